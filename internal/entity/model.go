package entity

import "time"

type TrainedModel struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type TrainResult struct {
	OK         bool     `json:"ok"`
	Output     string   `json:"output,omitempty"`
	Error      string   `json:"error,omitempty"`
	TrainError *float64 `json:"trainError"`
	TestError  *float64 `json:"testError"`
	ModelPath  string   `json:"modelPath,omitempty"`
}

type Operator struct {
	ID       string
	Username string
}
