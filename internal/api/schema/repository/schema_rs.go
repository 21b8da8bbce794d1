package schemaRepository

import (
	"database/sql"
	"errors"
	"time"

	"BioVision/internal/api/schema"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type LandmarkSchemaDB struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Landmarks   string         `db:"landmarks"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *schemaRepository) CreateSchema(c context.Context, s entity.LandmarkSchema) error {
	requestID := contextPkg.GetRequestID(c)

	landmarks, err := jsoniter.MarshalToString(s.Landmarks)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":          s.ID,
		"name":        s.Name,
		"description": s.Description,
		"landmarks":   landmarks,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateSchema, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateSchema")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"schema_id":  s.ID,
			"error":      err.Error(),
		}).Error("Database error when creating schema")
		return err
	}

	return nil
}

func (r *schemaRepository) GetSchemaByID(c context.Context, id string) (entity.LandmarkSchema, error) {
	requestID := contextPkg.GetRequestID(c)
	var row LandmarkSchemaDB

	query, args, err := sqlx.Named(queryGetSchemaByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSchemaByID named query preparation err")
		return entity.LandmarkSchema{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.LandmarkSchema{}, schema.ErrSchemaNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSchemaByID execution err")
		return entity.LandmarkSchema{}, err
	}

	return r.makeSchema(row)
}

func (r *schemaRepository) ListSchemas(c context.Context) ([]entity.LandmarkSchema, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []LandmarkSchemaDB

	if err := r.q.SelectContext(c, &rows, r.q.Rebind(queryListSchemas)); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListSchemas execution err")
		return nil, err
	}

	result := make([]entity.LandmarkSchema, 0, len(rows))
	for _, row := range rows {
		s, err := r.makeSchema(row)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"schema_id":  row.ID,
				"error":      err.Error(),
			}).Warn("Skipping schema with unreadable landmarks")
			continue
		}
		result = append(result, s)
	}

	return result, nil
}

func (r *schemaRepository) UpdateSchema(c context.Context, s entity.LandmarkSchema) error {
	requestID := contextPkg.GetRequestID(c)

	landmarks, err := jsoniter.MarshalToString(s.Landmarks)
	if err != nil {
		return err
	}

	argsKV := map[string]interface{}{
		"id":          s.ID,
		"name":        s.Name,
		"description": s.Description,
		"landmarks":   landmarks,
		"updated_at":  s.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryUpdateSchema, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSchema named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSchema execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return schema.ErrSchemaNotFound
	}

	return nil
}

func (r *schemaRepository) DeleteSchema(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryDeleteSchema, map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteSchema execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return schema.ErrSchemaNotFound
	}

	return nil
}

func (r *schemaRepository) makeSchema(row LandmarkSchemaDB) (entity.LandmarkSchema, error) {
	var landmarks []entity.LandmarkDefinition
	if err := jsoniter.UnmarshalFromString(row.Landmarks, &landmarks); err != nil {
		return entity.LandmarkSchema{}, err
	}

	return entity.LandmarkSchema{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Landmarks:   landmarks,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
