package workspaceService

import (
	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	"BioVision/pkg/viewport"
	"golang.org/x/net/context"
)

func (s *workspaceService) Tool(ctx context.Context) workspace.ToolState {
	return workspace.ToolState{Mode: s.ws.Mode()}
}

func (s *workspaceService) SetTool(ctx context.Context, mode string) (workspace.ToolState, error) {
	m, ok := annotator.ParseMode(mode)
	if !ok {
		return workspace.ToolState{}, annotator.ErrInvalidMode
	}
	if err := s.ws.SetMode(m); err != nil {
		return workspace.ToolState{}, err
	}
	return workspace.ToolState{Mode: m}, nil
}

func (s *workspaceService) Viewport(ctx context.Context) viewport.Viewport {
	return s.ws.View()
}

// Resize is debounced; the refit view shows up on a later Viewport call.
func (s *workspaceService) Resize(ctx context.Context, req workspace.ResizeRequest) {
	s.ws.Resize(req.Width, req.Height)
}

func (s *workspaceService) Zoom(ctx context.Context, req workspace.ZoomRequest) viewport.Viewport {
	return s.ws.Zoom(req.CursorX, req.CursorY, req.Factor)
}

func (s *workspaceService) Pan(ctx context.Context, req workspace.PanRequest) viewport.Viewport {
	return s.ws.Pan(req.DX, req.DY)
}

func (s *workspaceService) Pointer(ctx context.Context, ev annotator.PointerEvent) annotator.Outcome {
	return s.ws.HandlePointer(ev)
}

func (s *workspaceService) Key(ctx context.Context, ev annotator.KeyEvent) annotator.Outcome {
	return s.ws.HandleKey(ev)
}
