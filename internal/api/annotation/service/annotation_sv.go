package annotationService

import (
	"BioVision/internal/annotator"
	"BioVision/internal/api/annotation"
	"BioVision/internal/entity"
	"golang.org/x/net/context"
)

func (s *annotationService) Boxes(ctx context.Context) (annotator.Snapshot, error) {
	return s.ws.ActiveSnapshot()
}

// edit runs op as one serialized edit and fills in the hint when nothing
// changed.
func (s *annotationService) edit(hint string, op func(st *annotator.Store) bool) (annotation.EditResult, error) {
	snap, changed, err := s.ws.Apply(op)
	if err != nil {
		return annotation.EditResult{}, err
	}
	res := annotation.EditResult{Changed: changed, Snapshot: snap}
	if !changed {
		res.Hint = hint
	}
	return res, nil
}

func (s *annotationService) AddBox(ctx context.Context, req annotation.AddBoxRequest) (annotation.EditResult, error) {
	var box entity.BoundingBox
	res, err := s.edit(annotation.HintBoxTooSmall, func(st *annotator.Store) bool {
		var ok bool
		box, ok = st.AddBox(entity.Rect{Left: req.Left, Top: req.Top, Width: req.Width, Height: req.Height})
		return ok
	})
	if err == nil && res.Changed {
		res.Box = &box
	}
	return res, err
}

func (s *annotationService) UpdateBox(ctx context.Context, boxID int64, patch annotator.BoxPatch) (annotation.EditResult, error) {
	hint := annotation.HintUnchanged
	res, err := s.edit("", func(st *annotator.Store) bool {
		if _, ok := st.Box(boxID); !ok {
			hint = annotation.HintBoxNotFound
			return false
		}
		return st.UpdateBox(boxID, patch)
	})
	if err != nil {
		return res, err
	}
	if !res.Changed {
		res.Hint = hint
	}
	s.attachBox(&res, boxID)
	return res, nil
}

func (s *annotationService) DeleteBox(ctx context.Context, boxID int64) (annotation.EditResult, error) {
	return s.edit(annotation.HintBoxNotFound, func(st *annotator.Store) bool {
		return st.DeleteBox(boxID)
	})
}

func (s *annotationService) SelectBox(ctx context.Context, boxID *int64) (annotation.EditResult, error) {
	hint := annotation.HintUnchanged
	res, err := s.edit("", func(st *annotator.Store) bool {
		if boxID != nil {
			if _, ok := st.Box(*boxID); !ok {
				hint = annotation.HintBoxNotFound
				return false
			}
		}
		return st.SelectBox(boxID)
	})
	if err != nil {
		return res, err
	}
	if !res.Changed {
		res.Hint = hint
	}
	return res, nil
}

func (s *annotationService) AddLandmark(ctx context.Context, boxID int64, req annotation.LandmarkRequest) (annotation.EditResult, error) {
	var (
		point entity.Point
		index int
	)
	hint := annotation.HintOutsideImage
	res, err := s.edit("", func(st *annotator.Store) bool {
		if _, ok := st.Box(boxID); !ok {
			hint = annotation.HintBoxNotFound
			return false
		}
		var ok bool
		point, index, ok = st.AddLandmark(boxID, req.X, req.Y)
		return ok
	})
	if err != nil {
		return res, err
	}
	if !res.Changed {
		res.Hint = hint
		return res, nil
	}
	res.Landmark = &point
	res.LandmarkIndex = index
	s.attachBox(&res, boxID)
	return res, nil
}

func (s *annotationService) UpdateLandmark(ctx context.Context, boxID, landmarkID int64, patch annotator.LandmarkPatch) (annotation.EditResult, error) {
	return s.edit(annotation.HintLandmarkMissing, func(st *annotator.Store) bool {
		return st.UpdateLandmark(boxID, landmarkID, patch)
	})
}

func (s *annotationService) RemoveLandmark(ctx context.Context, boxID, landmarkID int64) (annotation.EditResult, error) {
	return s.edit(annotation.HintLandmarkMissing, func(st *annotator.Store) bool {
		return st.RemoveLandmark(boxID, landmarkID)
	})
}

func (s *annotationService) SkipLandmark(ctx context.Context, boxID int64) (annotation.EditResult, error) {
	var point entity.Point
	res, err := s.edit(annotation.HintBoxNotFound, func(st *annotator.Store) bool {
		var ok bool
		point, ok = st.SkipLandmark(boxID)
		return ok
	})
	if err == nil && res.Changed {
		res.Landmark = &point
		s.attachBox(&res, boxID)
	}
	return res, err
}

func (s *annotationService) Undo(ctx context.Context) (annotation.EditResult, error) {
	return s.edit(annotation.HintNothingToUndo, func(st *annotator.Store) bool {
		return st.Undo()
	})
}

func (s *annotationService) Redo(ctx context.Context) (annotation.EditResult, error) {
	return s.edit(annotation.HintNothingToRedo, func(st *annotator.Store) bool {
		return st.Redo()
	})
}

func (s *annotationService) Clear(ctx context.Context) (annotation.EditResult, error) {
	return s.edit(annotation.HintAlreadyEmpty, func(st *annotator.Store) bool {
		return st.Clear()
	})
}

func (s *annotationService) attachBox(res *annotation.EditResult, boxID int64) {
	for i := range res.Snapshot.Boxes {
		if res.Snapshot.Boxes[i].ID == boxID {
			box := res.Snapshot.Boxes[i]
			res.Box = &box
			return
		}
	}
}
