package schema

import "BioVision/internal/entity"

const (
	ButterflyWingID     = "butterfly-wing"
	FishMorphometricsID = "fish-morphometrics"
)

// CustomIDPrefix marks operator-authored schemas.
const CustomIDPrefix = "custom-"

func lm(index int, name, description, category string) entity.LandmarkDefinition {
	return entity.LandmarkDefinition{Index: index, Name: name, Description: description, Category: category}
}

var defaultSchemas = []entity.LandmarkSchema{
	{
		ID:          ButterflyWingID,
		Name:        "Butterfly Wing Morphometrics",
		Description: "Standard 18-point schema for butterfly wing analysis",
		BuiltIn:     true,
		Landmarks: []entity.LandmarkDefinition{
			lm(0, "Left Forewing Apex", "Tip of left forewing", "forewing"),
			lm(1, "Right Forewing Apex", "Tip of right forewing", "forewing"),
			lm(2, "Left Forewing Base", "Attachment point of left forewing", "forewing"),
			lm(3, "Right Forewing Base", "Attachment point of right forewing", "forewing"),
			lm(4, "Left Hindwing Apex", "Tip of left hindwing", "hindwing"),
			lm(5, "Right Hindwing Apex", "Tip of right hindwing", "hindwing"),
			lm(6, "Left Hindwing Base", "Attachment point of left hindwing", "hindwing"),
			lm(7, "Right Hindwing Base", "Attachment point of right hindwing", "hindwing"),
			lm(8, "Left Wing Vein R1", "Radial vein 1 on left wing", "veins"),
			lm(9, "Right Wing Vein R1", "Radial vein 1 on right wing", "veins"),
			lm(10, "Left Wing Vein M1", "Medial vein 1 on left wing", "veins"),
			lm(11, "Right Wing Vein M1", "Medial vein 1 on right wing", "veins"),
			lm(12, "Left Wing Vein Cu1", "Cubital vein 1 on left wing", "veins"),
			lm(13, "Right Wing Vein Cu1", "Cubital vein 1 on right wing", "veins"),
			lm(14, "Body Anterior", "Head attachment point", "body"),
			lm(15, "Body Posterior", "Abdomen tip", "body"),
			lm(16, "Left Antenna Tip", "Tip of left antenna", "antennae"),
			lm(17, "Right Antenna Tip", "Tip of right antenna", "antennae"),
		},
	},
	{
		ID:          FishMorphometricsID,
		Name:        "Fish Lateral Morphometrics",
		Description: "11-point schema for single-side fish morphometric analysis",
		BuiltIn:     true,
		Landmarks: []entity.LandmarkDefinition{
			lm(0, "Snout Tip", "Tip of upper jaw", "head"),
			lm(1, "Eye Center", "Geometric center of the eye", "head"),
			lm(2, "Opercular Edge", "Posterior-most bony margin of operculum", "head"),
			lm(3, "Pectoral Origin", "Anterior attachment of pectoral fin", "pectoral-fin"),
			lm(4, "Pelvic Origin", "Anterior attachment of pelvic fin", "pelvic-fin"),
			lm(5, "Dorsal Origin", "Anterior insertion of dorsal fin", "dorsal-fin"),
			lm(6, "Dorsal Insertion", "Posterior insertion of dorsal fin", "dorsal-fin"),
			lm(7, "Anal Origin", "Anterior insertion of anal fin", "anal-fin"),
			lm(8, "Anal Insertion", "Posterior insertion of anal fin", "anal-fin"),
			lm(9, "Upper Caudal Peduncle", "Dorsal insertion of caudal rays", "caudal-fin"),
			lm(10, "Lower Caudal Peduncle", "Ventral insertion of caudal rays", "caudal-fin"),
		},
	},
}

// DefaultSchemas returns copies of the built-in schemas.
func DefaultSchemas() []entity.LandmarkSchema {
	out := make([]entity.LandmarkSchema, 0, len(defaultSchemas))
	for _, s := range defaultSchemas {
		s.Landmarks = append([]entity.LandmarkDefinition(nil), s.Landmarks...)
		out = append(out, s)
	}
	return out
}

func DefaultSchema(id string) (entity.LandmarkSchema, bool) {
	for _, s := range DefaultSchemas() {
		if s.ID == id {
			return s, true
		}
	}
	return entity.LandmarkSchema{}, false
}

// Definitions numbers landmark requests in order, starting at zero.
func Definitions(reqs []LandmarkRequest) []entity.LandmarkDefinition {
	out := make([]entity.LandmarkDefinition, 0, len(reqs))
	for i, r := range reqs {
		out = append(out, lm(i, r.Name, r.Description, r.Category))
	}
	return out
}
