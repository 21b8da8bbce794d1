package model

import jsoniter "github.com/json-iterator/go"

const (
	DefaultTestSplit = 0.2
	DefaultSeed      = 42
)

type TrainRequest struct {
	ModelName     string                 `json:"modelName" validate:"required,max=64"`
	TestSplit     *float64               `json:"testSplit" validate:"omitempty,gt=0,lt=1"`
	Seed          *int                   `json:"seed" validate:"omitempty,gte=0"`
	CustomOptions map[string]interface{} `json:"customOptions"`
}

type RenameRequest struct {
	NewName string `json:"newName" validate:"required,max=64"`
}

type TestResult struct {
	OK      bool                `json:"ok"`
	Output  string              `json:"output,omitempty"`
	Results jsoniter.RawMessage `json:"results,omitempty"`
	Error   string              `json:"error,omitempty"`
}
