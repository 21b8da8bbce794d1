package entity

import "time"

type LandmarkDefinition struct {
	Index       int    `json:"index"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

type LandmarkSchema struct {
	ID          string               `json:"id" db:"id"`
	Name        string               `json:"name" db:"name"`
	Description string               `json:"description" db:"description"`
	Landmarks   []LandmarkDefinition `json:"landmarks" db:"-"`
	BuiltIn     bool                 `json:"builtIn" db:"-"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`
}
