package schema

type LandmarkRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"max=60"`
}

type CreateSchemaRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Description string            `json:"description" validate:"max=500"`
	Landmarks   []LandmarkRequest `json:"landmarks" validate:"required,min=1,dive"`
}

type UpdateSchemaRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Description string            `json:"description" validate:"max=500"`
	Landmarks   []LandmarkRequest `json:"landmarks" validate:"required,min=1,dive"`
}

type SchemaSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	LandmarkCount int    `json:"landmarkCount"`
	BuiltIn       bool   `json:"builtIn"`
}
