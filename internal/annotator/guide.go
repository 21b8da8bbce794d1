package annotator

import "BioVision/internal/entity"

// GuideStep tells the user which schema landmark to place next in a box.
type GuideStep struct {
	SchemaID string                     `json:"schemaId"`
	BoxID    int64                      `json:"boxId"`
	Position int                        `json:"position"`
	Total    int                        `json:"total"`
	Placed   int                        `json:"placed"`
	Skipped  int                        `json:"skipped"`
	Complete bool                       `json:"complete"`
	Next     *entity.LandmarkDefinition `json:"next,omitempty"`
}

// PlacementGuide derives the next slot from the number of entries already in
// the box, skipped ones included. Extra landmarks beyond the schema are
// allowed; the guide just reports completion.
func PlacementGuide(schema entity.LandmarkSchema, box entity.BoundingBox) GuideStep {
	step := GuideStep{
		SchemaID: schema.ID,
		BoxID:    box.ID,
		Position: len(box.Landmarks),
		Total:    len(schema.Landmarks),
	}
	for _, p := range box.Landmarks {
		if p.IsSkipped {
			step.Skipped++
		} else {
			step.Placed++
		}
	}

	if step.Position >= step.Total {
		step.Complete = true
		return step
	}
	next := schema.Landmarks[step.Position]
	step.Next = &next
	return step
}
