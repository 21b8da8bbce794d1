package labelRepository

import (
	"database/sql"
	"errors"

	"BioVision/internal/api/label"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (r *labelRepository) UpsertLabel(c context.Context, l entity.Label) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"image_filename": l.ImageFilename,
		"image_path":     l.ImagePath,
		"boxes":          l.Boxes,
		"box_count":      l.BoxCount,
		"landmark_count": l.LandmarkCount,
		"updated_at":     l.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertLabel, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for UpsertLabel")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"filename":   l.ImageFilename,
			"error":      err.Error(),
		}).Error("Database error when saving label")
		return err
	}

	return nil
}

func (r *labelRepository) GetLabel(c context.Context, filename string) (entity.Label, error) {
	requestID := contextPkg.GetRequestID(c)
	var l entity.Label

	query, args, err := sqlx.Named(queryGetLabel, map[string]interface{}{"image_filename": filename})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLabel named query preparation err")
		return entity.Label{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&l); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Label{}, label.ErrLabelNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetLabel execution err")
		return entity.Label{}, err
	}

	return l, nil
}

func (r *labelRepository) ListLabels(c context.Context) ([]entity.Label, error) {
	var labels []entity.Label

	if err := r.q.SelectContext(c, &labels, r.q.Rebind(queryListLabels)); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(c),
			"error":      err.Error(),
		}).Error("ListLabels execution err")
		return nil, err
	}

	return labels, nil
}
