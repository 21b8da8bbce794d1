package workspaceHandler

import (
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	"BioVision/pkg/log"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const (
	socketReadTimeout  = 90 * time.Second
	socketPingInterval = 30 * time.Second
	socketWriteTimeout = 10 * time.Second
	socketQueueSize    = 64
)

// handleEditorSocket carries pointer and key events from the editor and
// pushes a snapshot after every change to the boxes.
func (h *WorkspaceHandler) handleEditorSocket(c *websocket.Conn) {
	requestID, _ := c.Locals("X-Request-ID").(string)
	fields := log.Fields{"request_id": requestID, "remote": c.RemoteAddr().String()}

	h.log.WithFields(fields).Info("Editor socket connected")
	defer h.log.WithFields(fields).Info("Editor socket disconnected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan workspace.ServerMessage, socketQueueSize)

	// the listener runs under the workspace lock; drop pushes for a
	// client that is not keeping up
	unsubscribe := h.workspaceService.Subscribe(func(s annotator.Snapshot) {
		snap := s
		select {
		case out <- workspace.ServerMessage{Type: workspace.MessageSnapshot, Snapshot: &snap}:
		default:
			h.log.WithFields(fields).Warn("Editor socket queue full, dropping snapshot")
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx, c, out, fields)
	}()

	if snap, err := h.workspaceService.ActiveSnapshot(ctx); err == nil {
		out <- workspace.ServerMessage{Type: workspace.MessageSnapshot, Snapshot: &snap}
	}

	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(socketReadTimeout))
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(socketReadTimeout)); err != nil {
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(fields).WithError(err).Warn("Editor socket error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		reply := h.dispatch(ctx, message)
		select {
		case out <- reply:
		case <-done:
			return
		}
	}

	cancel()
	<-done
}

func (h *WorkspaceHandler) dispatch(ctx context.Context, message []byte) workspace.ServerMessage {
	var msg workspace.ClientMessage
	if err := jsoniter.Unmarshal(message, &msg); err != nil {
		return workspace.ServerMessage{Type: workspace.MessageError, Error: "invalid message"}
	}

	var outcome annotator.Outcome
	switch {
	case msg.Type == workspace.MessagePointer && msg.Pointer != nil:
		outcome = h.workspaceService.Pointer(ctx, *msg.Pointer)
	case msg.Type == workspace.MessageKey && msg.Key != nil:
		outcome = h.workspaceService.Key(ctx, *msg.Key)
	default:
		return workspace.ServerMessage{Type: workspace.MessageError, Error: "unknown message type " + msg.Type}
	}
	return workspace.ServerMessage{Type: workspace.MessageOutcome, Outcome: &outcome}
}

func (h *WorkspaceHandler) writeLoop(ctx context.Context, c *websocket.Conn, out <-chan workspace.ServerMessage, fields log.Fields) {
	ticker := time.NewTicker(socketPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			if err := c.SetWriteDeadline(time.Now().Add(socketWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteJSON(msg); err != nil {
				h.log.WithFields(fields).WithError(err).Warn("Editor socket write failed")
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(socketWriteTimeout)); err != nil {
				_ = c.Close()
				return
			}
		}
	}
}
