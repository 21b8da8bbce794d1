package detection

import (
	"fmt"
	"regexp"
	"strings"

	"BioVision/internal/annotator"
	jsoniter "github.com/json-iterator/go"
)

const VisionPrompt = `You are helping annotate biological specimens (insects, fish, leaves and similar) on a photograph.
Find every separate specimen in the image and return ONLY a JSON object, with no prose:
{"specimens": [{"x": 0.10, "y": 0.20, "w": 0.30, "h": 0.25, "confidence": 0.9, "label": "butterfly"}]}
x and y are the top-left corner and w and h the size of a tight bounding box, all as fractions of the image width and height between 0 and 1.
Return {"specimens": []} when there is no specimen.`

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// SanitizeModelJSON strips code fences, comments and trailing commas that
// vision models like to add, and keeps the outermost object.
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// ParseVisionResult decodes a model reply into normalized boxes.
func ParseVisionResult(raw string) (VisionResult, error) {
	var result VisionResult

	cleaned := SanitizeModelJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return result, fmt.Errorf("%w: no json object found", ErrVisionResponse)
	}
	if err := jsoniter.Unmarshal([]byte(cleaned), &result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrVisionResponse, err)
	}
	return result, nil
}

// ToDetectedBoxes scales normalized boxes to image pixels, clips them to the
// image and drops those whose area is below minArea of the image.
func ToDetectedBoxes(result VisionResult, width, height int, minArea float64) []annotator.DetectedBox {
	if width <= 0 || height <= 0 {
		return nil
	}
	w, h := float64(width), float64(height)

	boxes := make([]annotator.DetectedBox, 0, len(result.Specimens))
	for _, s := range result.Specimens {
		x0, y0 := clampUnit(s.X), clampUnit(s.Y)
		x1, y1 := clampUnit(s.X+s.W), clampUnit(s.Y+s.H)
		if x1 <= x0 || y1 <= y0 {
			continue
		}
		if (x1-x0)*(y1-y0) < minArea {
			continue
		}

		label := s.Label
		if label == "" {
			label = "specimen"
		}
		boxes = append(boxes, annotator.DetectedBox{
			Left:       x0 * w,
			Top:        y0 * h,
			Width:      (x1 - x0) * w,
			Height:     (y1 - y0) * h,
			Confidence: s.Confidence,
			ClassName:  label,
		})
	}
	return boxes
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
