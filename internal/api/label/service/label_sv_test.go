package labelService

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"BioVision/database/sqlite"
	"BioVision/internal/annotator"
	"BioVision/internal/api/label"
	labelRepository "BioVision/internal/api/label/repository"
	"BioVision/internal/entity"
	"BioVision/pkg/redis"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	mu    sync.Mutex
	boxes map[string][]entity.BoundingBox
	reads int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{boxes: make(map[string][]entity.BoundingBox)}
}

func (f *fakeMirror) SetBoxes(ctx context.Context, key string, boxes []entity.BoundingBox, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boxes[key] = entity.CloneBoxes(boxes)
	return nil
}

func (f *fakeMirror) GetBoxes(ctx context.Context, key string) ([]entity.BoundingBox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	b, ok := f.boxes[key]
	if !ok {
		return nil, redis.ErrMiss
	}
	return entity.CloneBoxes(b), nil
}

func (f *fakeMirror) DeleteBoxes(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.boxes, key)
	return nil
}

func (f *fakeMirror) SetActiveImage(ctx context.Context, imageID string) error { return nil }
func (f *fakeMirror) Close() error                                           { return nil }

type fixture struct {
	svc     ILabelService
	ws      *annotator.Workspace
	repo    labelRepository.Repository
	mirror  *fakeMirror
	dataset string
	images  string
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()

	dir := t.TempDir()
	db, err := sqlite.New(filepath.Join(dir, "labels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ws := annotator.NewWorkspace(logger)
	t.Cleanup(ws.Close)

	f := &fixture{
		ws:      ws,
		repo:    labelRepository.New(db, logger),
		mirror:  newFakeMirror(),
		dataset: filepath.Join(dir, "dataset"),
		images:  filepath.Join(dir, "images"),
	}
	require.NoError(t, os.MkdirAll(f.images, 0o755))
	f.svc = NewLabelService(logger, f.repo, f.mirror, ws, f.dataset, delay)
	return f
}

func (f *fixture) addImage(t *testing.T, name string) entity.AnnotatedImage {
	t.Helper()
	path := filepath.Join(f.images, name)
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o644))

	img, err := f.ws.AddImage(entity.AnnotatedImage{
		ID:       "img-" + name,
		Filename: name,
		Path:     path,
		Width:    800,
		Height:   600,
	})
	require.NoError(t, err)
	return img
}

func drawBox(t *testing.T, ws *annotator.Workspace) int64 {
	t.Helper()
	var id int64
	_, changed, err := ws.Apply(func(s *annotator.Store) bool {
		box, ok := s.AddBox(entity.Rect{Left: 50, Top: 50, Width: 100, Height: 100})
		id = box.ID
		if !ok {
			return false
		}
		s.AddLandmark(box.ID, 75, 75)
		return true
	})
	require.NoError(t, err)
	require.True(t, changed)
	return id
}

func TestSaveAllWritesDatasetAndDatabase(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.addImage(t, "moth.png")
	drawBox(t, f.ws)

	res, err := f.svc.SaveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)
	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(f.dataset, "labels", "moth.json"), res.Files[0])

	raw, err := os.ReadFile(res.Files[0])
	require.NoError(t, err)
	var doc entity.LabelFile
	require.NoError(t, jsoniter.Unmarshal(raw, &doc))
	assert.Equal(t, "moth.png", doc.ImageFilename)
	require.Len(t, doc.Boxes, 1)
	assert.Equal(t, 50.0, doc.Boxes[0].Left)
	require.Len(t, doc.Boxes[0].Landmarks, 1)
	assert.Equal(t, 75.0, doc.Boxes[0].Landmarks[0].X)

	_, err = os.Stat(filepath.Join(f.dataset, "images", "moth.png"))
	assert.NoError(t, err)

	summaries, err := f.svc.ListLabels(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].BoxCount)
	assert.Equal(t, 1, summaries[0].LandmarkCount)

	assert.Len(t, f.mirror.boxes["moth.png"], 1)
}

func TestAutosaveAfterEdit(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)
	f.svc.Start()
	t.Cleanup(f.svc.Close)

	f.addImage(t, "beetle.jpg")
	drawBox(t, f.ws)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(f.dataset, "labels", "beetle.json"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	client, err := f.repo.NewClient(false)
	require.NoError(t, err)
	row, err := client.Label.GetLabel(context.Background(), "beetle.jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, row.BoxCount)
}

func TestCloseFlushesPendingEdits(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.svc.Start()

	f.addImage(t, "wasp.png")
	drawBox(t, f.ws)
	f.svc.Close()

	client, err := f.repo.NewClient(false)
	require.NoError(t, err)
	_, err = client.Label.GetLabel(context.Background(), "wasp.png")
	assert.NoError(t, err)
}

func TestRestoreImageFromSavedLabels(t *testing.T) {
	f := newFixture(t, time.Hour)
	f.addImage(t, "moth.png")
	boxID := drawBox(t, f.ws)
	_, err := f.svc.SaveAll(context.Background())
	require.NoError(t, err)

	// a new session sees the labels through the database
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ws := annotator.NewWorkspace(logger)
	t.Cleanup(ws.Close)
	f.mirror.boxes = map[string][]entity.BoundingBox{}
	svc := NewLabelService(logger, f.repo, f.mirror, ws, "", time.Hour)

	img, err := ws.AddImage(entity.AnnotatedImage{ID: "next", Filename: "moth.png", Width: 800, Height: 600})
	require.NoError(t, err)

	n, err := svc.RestoreImage(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap, ok := ws.Snapshot("next")
	require.True(t, ok)
	require.Len(t, snap.Boxes, 1)
	assert.Equal(t, boxID, snap.Boxes[0].ID)
	assert.False(t, snap.CanUndo)
	require.NotNil(t, snap.SelectedBoxID)

	// the database read repopulates the mirror
	assert.Len(t, f.mirror.boxes["moth.png"], 1)
}

func TestRestoreImageWithoutLabels(t *testing.T) {
	f := newFixture(t, time.Hour)
	img := f.addImage(t, "fresh.png")

	n, err := f.svc.RestoreImage(context.Background(), img)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetLabel(t *testing.T) {
	f := newFixture(t, time.Hour)

	_, err := f.svc.GetLabel(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, label.ErrInvalidFilename)

	_, err = f.svc.GetLabel(context.Background(), "missing.png")
	assert.ErrorIs(t, err, label.ErrLabelNotFound)

	f.mirror.boxes["cached.png"] = []entity.BoundingBox{{ID: 1, Left: 1, Top: 2, Width: 30, Height: 40}}
	doc, err := f.svc.GetLabel(context.Background(), "cached.png")
	require.NoError(t, err)
	require.Len(t, doc.Boxes, 1)
	assert.Equal(t, 30.0, doc.Boxes[0].Width)
}

func TestLabelFileName(t *testing.T) {
	tests := map[string]string{
		"moth.png":        "moth.json",
		"a.b.tiff":        "a.b.json",
		"noext":           "noext.json",
		"dir/inside.jpeg": "inside.json",
	}
	for in, want := range tests {
		assert.Equal(t, want, LabelFileName(in), in)
	}
}
