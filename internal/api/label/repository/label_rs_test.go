package labelRepository

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"BioVision/database/sqlite"
	"BioVision/internal/api/label"
	"BioVision/internal/entity"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) Client {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "labels.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := New(db, logger).NewClient(false)
	require.NoError(t, err)
	return client
}

func TestUpsertLabelOverwrites(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, client.Label.UpsertLabel(ctx, entity.Label{
		ImageFilename: "moth.png",
		ImagePath:     "/data/moth.png",
		Boxes:         `[]`,
		UpdatedAt:     now,
	}))
	require.NoError(t, client.Label.UpsertLabel(ctx, entity.Label{
		ImageFilename: "moth.png",
		ImagePath:     "/data/moth.png",
		Boxes:         `[{"id":1}]`,
		BoxCount:      1,
		LandmarkCount: 3,
		UpdatedAt:     now.Add(time.Second),
	}))

	got, err := client.Label.GetLabel(ctx, "moth.png")
	require.NoError(t, err)
	assert.Equal(t, 1, got.BoxCount)
	assert.Equal(t, 3, got.LandmarkCount)
	assert.Equal(t, `[{"id":1}]`, got.Boxes)

	list, err := client.Label.ListLabels(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetLabelMissing(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Label.GetLabel(context.Background(), "nope.png")
	assert.ErrorIs(t, err, label.ErrLabelNotFound)
}

func TestListLabelsNewestFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, name := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, client.Label.UpsertLabel(ctx, entity.Label{
			ImageFilename: name,
			Boxes:         `[]`,
			UpdatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := client.Label.ListLabels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c.png", list[0].ImageFilename)
	assert.Equal(t, "a.png", list[2].ImageFilename)
}
