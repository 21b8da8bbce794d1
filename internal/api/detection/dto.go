package detection

// DefaultConfThreshold is the minimum specimen area as a fraction of the
// image area.
const DefaultConfThreshold = 0.05

type DetectRequest struct {
	ConfThreshold  *float64 `json:"confThreshold" validate:"omitempty,gte=0.01,lte=0.2"`
	ConfirmReplace *bool    `json:"confirmReplace"`
}

func (r DetectRequest) Threshold() float64 {
	if r.ConfThreshold == nil {
		return DefaultConfThreshold
	}
	return *r.ConfThreshold
}

// Confirmed reports whether existing manual boxes may be replaced. An absent
// field means yes.
func (r DetectRequest) Confirmed() bool {
	return r.ConfirmReplace == nil || *r.ConfirmReplace
}

type PredictRequest struct {
	ModelTag       string `json:"modelTag" validate:"required,max=64"`
	ConfirmReplace *bool  `json:"confirmReplace"`
}

func (r PredictRequest) Confirmed() bool {
	return r.ConfirmReplace == nil || *r.ConfirmReplace
}

// VisionBox is one specimen as reported by a vision model, in coordinates
// normalized to 0..1.
type VisionBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

type VisionResult struct {
	Specimens []VisionBox `json:"specimens"`
}

type DetectorStatus struct {
	BridgeConnected bool   `json:"bridgeConnected"`
	Vision          string `json:"vision,omitempty"`
}
