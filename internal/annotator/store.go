package annotator

import "BioVision/internal/entity"

// Store applies annotation edits to a single image. Every edit builds a new
// box array and commits it as one undo step, so readers only ever observe a
// complete array. Unknown box or landmark ids are no-ops.
type Store struct {
	img *entity.AnnotatedImage
	ids *IDGenerator
}

func NewStore(img *entity.AnnotatedImage, ids *IDGenerator) *Store {
	if img.Boxes == nil {
		img.Boxes = []entity.BoundingBox{}
	}
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Store{img: img, ids: ids}
}

type BoxPatch struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	// MoveLandmarks shifts placed landmarks by the same offset as left/top.
	MoveLandmarks bool `json:"moveLandmarks,omitempty"`
}

type LandmarkPatch struct {
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Label *string  `json:"label,omitempty"`
}

type DetectedBox struct {
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	ClassName  string  `json:"class_name"`
}

type PredictedPoint struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	ID int64   `json:"id"`
}

type PredictedBox struct {
	Left      float64          `json:"left"`
	Top       float64          `json:"top"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Landmarks []PredictedPoint `json:"landmarks"`
}

func (s *Store) Image() entity.AnnotatedImage {
	return s.img.Clone()
}

func (s *Store) Boxes() []entity.BoundingBox {
	return entity.CloneBoxes(s.img.Boxes)
}

func (s *Store) Box(id int64) (entity.BoundingBox, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return entity.BoundingBox{}, false
	}
	return entity.CloneBoxes(s.img.Boxes[i : i+1])[0], true
}

// BoxAt returns the first box, in array order, containing the point.
func (s *Store) BoxAt(x, y float64) (entity.BoundingBox, bool) {
	for i := range s.img.Boxes {
		if s.img.Boxes[i].Contains(x, y) {
			return s.Box(s.img.Boxes[i].ID)
		}
	}
	return entity.BoundingBox{}, false
}

func (s *Store) Selected() (entity.BoundingBox, bool) {
	if s.img.SelectedBoxID == nil {
		return entity.BoundingBox{}, false
	}
	return s.Box(*s.img.SelectedBoxID)
}

func (s *Store) AddBox(r entity.Rect) (entity.BoundingBox, bool) {
	if s.img.Failed() || !r.LargeEnough() {
		return entity.BoundingBox{}, false
	}

	box := entity.BoundingBox{
		ID:        s.ids.Next(),
		Left:      r.Left,
		Top:       r.Top,
		Width:     r.Width,
		Height:    r.Height,
		Landmarks: []entity.Point{},
		Source:    entity.SourceManual,
	}

	next := append(entity.CloneBoxes(s.img.Boxes), box)
	s.commit(next)
	s.selectID(box.ID)
	s.markEdited()
	return box, true
}

func (s *Store) UpdateBox(id int64, patch BoxPatch) bool {
	i := s.indexOf(id)
	if i < 0 || s.img.Failed() {
		return false
	}

	old := s.img.Boxes[i]
	updated := old
	if patch.Left != nil {
		updated.Left = *patch.Left
	}
	if patch.Top != nil {
		updated.Top = *patch.Top
	}
	if patch.Width != nil {
		updated.Width = *patch.Width
	}
	if patch.Height != nil {
		updated.Height = *patch.Height
	}
	if !updated.Rect().LargeEnough() || updated.Rect() == old.Rect() {
		return false
	}

	dx, dy := updated.Left-old.Left, updated.Top-old.Top
	if patch.MoveLandmarks {
		// Landmarks must stay on the image, refuse moves that would push one off.
		for _, p := range old.Landmarks {
			if !p.IsSkipped && !s.img.InBounds(p.X+dx, p.Y+dy) {
				return false
			}
		}
	}

	next := entity.CloneBoxes(s.img.Boxes)
	box := &next[i]
	box.Left, box.Top, box.Width, box.Height = updated.Left, updated.Top, updated.Width, updated.Height
	if patch.MoveLandmarks {
		for j := range box.Landmarks {
			if box.Landmarks[j].IsSkipped {
				continue
			}
			box.Landmarks[j].X += dx
			box.Landmarks[j].Y += dy
		}
	}
	if box.Source == entity.SourcePredicted {
		box.Source = entity.SourceCorrected
	}

	s.commit(next)
	s.markEdited()
	return true
}

func (s *Store) DeleteBox(id int64) bool {
	i := s.indexOf(id)
	if i < 0 || s.img.Failed() {
		return false
	}

	current := entity.CloneBoxes(s.img.Boxes)
	next := append(current[:i:i], current[i+1:]...)
	s.commit(next)
	if s.img.SelectedBoxID != nil && *s.img.SelectedBoxID == id {
		s.img.SelectedBoxID = nil
	}
	s.markEdited()
	return true
}

// SelectBox sets the selection; nil clears it. Selection is view state and
// is not recorded in history.
func (s *Store) SelectBox(id *int64) bool {
	if id == nil {
		changed := s.img.SelectedBoxID != nil
		s.img.SelectedBoxID = nil
		return changed
	}
	if s.indexOf(*id) < 0 {
		return false
	}
	if s.img.SelectedBoxID != nil && *s.img.SelectedBoxID == *id {
		return false
	}
	s.selectID(*id)
	return true
}

// AddLandmark appends a point to the box and selects it. The returned index
// is the 1-based position shown next to the point.
func (s *Store) AddLandmark(boxID int64, x, y float64) (entity.Point, int, bool) {
	i := s.indexOf(boxID)
	if i < 0 || s.img.Failed() || !s.img.InBounds(x, y) {
		return entity.Point{}, 0, false
	}

	p := entity.Point{X: x, Y: y, ID: s.ids.Next()}
	next := entity.CloneBoxes(s.img.Boxes)
	next[i].Landmarks = append(next[i].Landmarks, p)
	s.commit(next)
	s.selectID(boxID)
	s.markEdited()
	return p, len(next[i].Landmarks), true
}

func (s *Store) UpdateLandmark(boxID, landmarkID int64, patch LandmarkPatch) bool {
	i := s.indexOf(boxID)
	if i < 0 || s.img.Failed() {
		return false
	}
	j := landmarkIndex(s.img.Boxes[i].Landmarks, landmarkID)
	if j < 0 {
		return false
	}

	updated := s.img.Boxes[i].Landmarks[j]
	if patch.X != nil {
		updated.X = *patch.X
	}
	if patch.Y != nil {
		updated.Y = *patch.Y
	}
	if patch.Label != nil {
		updated.Label = *patch.Label
	}
	moved := patch.X != nil || patch.Y != nil
	if moved && !s.img.InBounds(updated.X, updated.Y) {
		return false
	}
	if moved {
		updated.IsSkipped = false
		if updated.IsPredicted {
			updated.IsCorrected = true
		}
	}

	next := entity.CloneBoxes(s.img.Boxes)
	next[i].Landmarks[j].X = updated.X
	next[i].Landmarks[j].Y = updated.Y
	next[i].Landmarks[j].Label = updated.Label
	next[i].Landmarks[j].IsSkipped = updated.IsSkipped
	next[i].Landmarks[j].IsCorrected = updated.IsCorrected
	s.commit(next)
	s.markEdited()
	return true
}

func (s *Store) RemoveLandmark(boxID, landmarkID int64) bool {
	i := s.indexOf(boxID)
	if i < 0 || s.img.Failed() {
		return false
	}
	j := landmarkIndex(s.img.Boxes[i].Landmarks, landmarkID)
	if j < 0 {
		return false
	}

	next := entity.CloneBoxes(s.img.Boxes)
	lms := next[i].Landmarks
	next[i].Landmarks = append(lms[:j:j], lms[j+1:]...)
	s.commit(next)
	s.markEdited()
	return true
}

// SkipLandmark records a deliberately omitted landmark so the placement
// guide moves on to the next slot.
func (s *Store) SkipLandmark(boxID int64) (entity.Point, bool) {
	i := s.indexOf(boxID)
	if i < 0 || s.img.Failed() {
		return entity.Point{}, false
	}

	p := entity.Point{
		X:         entity.SkippedCoordinate,
		Y:         entity.SkippedCoordinate,
		ID:        s.ids.Next(),
		IsSkipped: true,
	}
	next := entity.CloneBoxes(s.img.Boxes)
	next[i].Landmarks = append(next[i].Landmarks, p)
	s.commit(next)
	s.selectID(boxID)
	s.markEdited()
	return p, true
}

// SetBoxesFromDetection replaces every box on the image with the detected
// ones. Detections below the minimum size are dropped; if nothing is left
// the image is not touched.
func (s *Store) SetBoxesFromDetection(detected []DetectedBox) int {
	if s.img.Failed() {
		return 0
	}

	next := make([]entity.BoundingBox, 0, len(detected))
	for _, d := range detected {
		r := entity.Rect{Left: d.Left, Top: d.Top, Width: d.Width, Height: d.Height}
		if !r.LargeEnough() {
			continue
		}
		conf := d.Confidence
		next = append(next, entity.BoundingBox{
			ID:         s.ids.Next(),
			Left:       d.Left,
			Top:        d.Top,
			Width:      d.Width,
			Height:     d.Height,
			Landmarks:  []entity.Point{},
			Confidence: &conf,
			ClassName:  d.ClassName,
			Source:     entity.SourcePredicted,
		})
	}
	if len(next) == 0 {
		return 0
	}

	s.commit(next)
	s.selectID(next[0].ID)
	s.img.ProcessingStatus = entity.StatusPredicted
	return len(next)
}

// SetBoxesFromPrediction replaces every box with model output, landmarks
// included.
func (s *Store) SetBoxesFromPrediction(predicted []PredictedBox) int {
	if s.img.Failed() {
		return 0
	}

	next := make([]entity.BoundingBox, 0, len(predicted))
	for _, pb := range predicted {
		r := entity.Rect{Left: pb.Left, Top: pb.Top, Width: pb.Width, Height: pb.Height}
		if !r.LargeEnough() {
			continue
		}
		box := entity.BoundingBox{
			ID:        s.ids.Next(),
			Left:      pb.Left,
			Top:       pb.Top,
			Width:     pb.Width,
			Height:    pb.Height,
			Landmarks: make([]entity.Point, 0, len(pb.Landmarks)),
			Source:    entity.SourcePredicted,
		}
		for _, p := range pb.Landmarks {
			box.Landmarks = append(box.Landmarks, entity.Point{
				X:           p.X,
				Y:           p.Y,
				ID:          s.ids.Next(),
				IsPredicted: true,
			})
		}
		next = append(next, box)
	}
	if len(next) == 0 {
		return 0
	}

	s.commit(next)
	s.selectID(next[0].ID)
	s.img.ProcessingStatus = entity.StatusPredicted
	return len(next)
}

// Restore seeds the image with persisted boxes. It starts a fresh history.
func (s *Store) Restore(boxes []entity.BoundingBox) {
	s.img.Boxes = entity.CloneBoxes(boxes)
	if s.img.Boxes == nil {
		s.img.Boxes = []entity.BoundingBox{}
	}
	s.img.History = nil
	s.img.Future = nil
	s.img.StatusHistory = nil
	s.img.StatusFuture = nil
	s.img.SelectedBoxID = nil
	if len(s.img.Boxes) > 0 {
		s.selectID(s.img.Boxes[0].ID)
	}
}

// HasManualBoxes reports whether any box was drawn or corrected by hand.
func (s *Store) HasManualBoxes() bool {
	for _, b := range s.img.Boxes {
		if b.Source != entity.SourcePredicted {
			return true
		}
	}
	return false
}

func (s *Store) indexOf(id int64) int {
	for i := range s.img.Boxes {
		if s.img.Boxes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) selectID(id int64) {
	s.img.SelectedBoxID = &id
}

func (s *Store) markEdited() {
	if s.img.ProcessingStatus == entity.StatusPredicted {
		s.img.ProcessingStatus = entity.StatusReview
	}
}

func landmarkIndex(points []entity.Point, id int64) int {
	for i := range points {
		if points[i].ID == id {
			return i
		}
	}
	return -1
}
