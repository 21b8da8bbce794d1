package schema

import "BioVision/pkg/response"

var (
	ErrSchemaNotFound   = response.NewError(404, "landmark schema not found")
	ErrSchemaReadOnly   = response.NewError(403, "built-in schemas cannot be modified")
	ErrSchemaExists     = response.NewError(409, "landmark schema already exists")
	ErrNoBoxSelected    = response.NewError(409, "no box selected")
	ErrBoxNotFound      = response.NewError(404, "box not found")
	ErrInvalidBoxID     = response.NewError(400, "invalid box id")
	ErrNoActiveImage    = response.NewError(409, "no active image")
	ErrSaveSchemaFailed = response.NewError(500, "failed to save landmark schema")
)
