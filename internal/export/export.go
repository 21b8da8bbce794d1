// Package export renders annotated images as JSON or CSV documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"BioVision/internal/entity"
	jsoniter "github.com/json-iterator/go"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, bool) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV:
		return f, true
	case "":
		return FormatJSON, true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// FileName builds a timestamped download name such as
// annotations_1700000000000.csv.
func (f Format) FileName(now time.Time) string {
	return fmt.Sprintf("annotations_%d.%s", now.UnixMilli(), f)
}

var CSVHeader = []string{
	"filename", "box_id", "box_left", "box_top", "box_width", "box_height",
	"landmark_id", "landmark_x", "landmark_y",
}

type jsonLandmark struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	ID int64   `json:"id"`
}

type jsonBox struct {
	Left      float64        `json:"left"`
	Top       float64        `json:"top"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Landmarks []jsonLandmark `json:"landmarks"`
}

type jsonImage struct {
	ID    string    `json:"id"`
	URL   string    `json:"url"`
	Boxes []jsonBox `json:"boxes"`
}

// Write renders images in the requested format.
func Write(w io.Writer, f Format, images []entity.AnnotatedImage) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, images)
	case FormatJSON:
		return WriteJSON(w, images)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

func WriteJSON(w io.Writer, images []entity.AnnotatedImage) error {
	out := make([]jsonImage, 0, len(images))
	for _, img := range images {
		doc := jsonImage{ID: img.ID, URL: img.URL, Boxes: make([]jsonBox, 0, len(img.Boxes))}
		for _, b := range img.Boxes {
			jb := jsonBox{
				Left:      b.Left,
				Top:       b.Top,
				Width:     b.Width,
				Height:    b.Height,
				Landmarks: make([]jsonLandmark, 0, len(b.Landmarks)),
			}
			for _, p := range b.Landmarks {
				jb.Landmarks = append(jb.Landmarks, jsonLandmark{X: p.X, Y: p.Y, ID: p.ID})
			}
			doc.Boxes = append(doc.Boxes, jb)
		}
		out = append(out, doc)
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes one row per landmark. A box without landmarks still gets a
// row, with the landmark columns left empty.
func WriteCSV(w io.Writer, images []entity.AnnotatedImage) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, img := range images {
		for _, b := range img.Boxes {
			geometry := []string{
				img.Filename,
				strconv.FormatInt(b.ID, 10),
				formatFloat(b.Left),
				formatFloat(b.Top),
				formatFloat(b.Width),
				formatFloat(b.Height),
			}
			if len(b.Landmarks) == 0 {
				if err := cw.Write(append(geometry, "", "", "")); err != nil {
					return err
				}
				continue
			}
			for _, p := range b.Landmarks {
				row := append(append([]string{}, geometry...),
					strconv.FormatInt(p.ID, 10), formatFloat(p.X), formatFloat(p.Y))
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
