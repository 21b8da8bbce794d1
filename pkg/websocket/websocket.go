package websocketPkg

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"BioVision/internal/annotator"
	"BioVision/pkg/log"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type Action string

const (
	ActionDetect  Action = "detect"
	ActionPredict Action = "predict"
	ActionTrain   Action = "train"
	ActionTest    Action = "test"
)

// Request is one frame sent to the Python bridge. Responses echo the id.
type Request struct {
	ID      string      `json:"id"`
	Action  Action      `json:"action"`
	Payload interface{} `json:"payload"`
}

type Response struct {
	ID      string                  `json:"id"`
	OK      bool                    `json:"ok"`
	Boxes   []annotator.DetectedBox `json:"boxes,omitempty"`
	Data    *PredictionData         `json:"data,omitempty"`
	Output  string                  `json:"output,omitempty"`
	Results jsoniter.RawMessage     `json:"results,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

type PredictionData struct {
	Boxes []annotator.PredictedBox `json:"boxes"`
}

type DetectPayload struct {
	ImagePath     string  `json:"imagePath"`
	ConfThreshold float64 `json:"confThreshold"`
}

type PredictPayload struct {
	ImagePath string `json:"imagePath"`
	ModelTag  string `json:"modelTag"`
}

type TrainPayload struct {
	ModelName     string                 `json:"modelName"`
	TestSplit     float64                `json:"testSplit,omitempty"`
	Seed          int                    `json:"seed,omitempty"`
	CustomOptions map[string]interface{} `json:"customOptions,omitempty"`
}

type TestPayload struct {
	ModelName string `json:"modelName"`
}

var ErrNotConnected = errors.New("bridge is not connected")

// RemoteError is returned when the bridge answered with ok=false.
type RemoteError struct {
	Action  Action
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bridge %s failed: %s", e.Action, e.Message)
}

type IBridge interface {
	Detect(ctx context.Context, imagePath string, confThreshold float64) ([]annotator.DetectedBox, error)
	Predict(ctx context.Context, imagePath string, modelTag string) ([]annotator.PredictedBox, error)
	Train(ctx context.Context, payload TrainPayload) (*Response, error)
	Test(ctx context.Context, modelName string) (*Response, error)
	IsConnected() bool
	Reconnect() error
	Close()
}

type bridgeClient struct {
	url          string
	dialer       websocket.Dialer
	conn         *websocket.Conn
	connMu       sync.Mutex
	reqMu        sync.Mutex
	pingInterval time.Duration
	writeTimeout time.Duration
	timeouts     map[Action]time.Duration
	json         jsoniter.API
	log          *logrus.Entry
}

type Option func(*bridgeClient)

func WithPingInterval(d time.Duration) Option {
	return func(c *bridgeClient) {
		c.pingInterval = d
	}
}

func WithTimeout(action Action, d time.Duration) Option {
	return func(c *bridgeClient) {
		c.timeouts[action] = d
	}
}

// NewBridgeClient connects to the bridge in the background. A failed
// initial dial is retried on the first request.
func NewBridgeClient(url string, opts ...Option) IBridge {
	if url == "" {
		url = os.Getenv("BRIDGE_URL")
	}
	if url == "" {
		url = "ws://localhost:8765/bridge"
	}

	c := &bridgeClient{
		url:          url,
		dialer:       websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		pingInterval: 30 * time.Second,
		writeTimeout: 5 * time.Second,
		timeouts: map[Action]time.Duration{
			ActionDetect:  2 * time.Minute,
			ActionPredict: 2 * time.Minute,
			ActionTrain:   time.Hour,
			ActionTest:    15 * time.Minute,
		},
		json: jsoniter.ConfigCompatibleWithStandardLibrary,
		log:  log.Component("bridge"),
	}
	for _, opt := range opts {
		opt(c)
	}

	go func() {
		if _, err := c.connection(); err != nil {
			c.log.WithField("error", err.Error()).Warn("Initial bridge connection failed, will retry on demand")
		}
	}()

	return c
}

func (c *bridgeClient) IsConnected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}

func (c *bridgeClient) Reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	_, err := c.dialLocked()
	return err
}

func (c *bridgeClient) Close() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout),
		)
		c.conn.Close()
		c.conn = nil
	}
}

func (c *bridgeClient) dialLocked() (*websocket.Conn, error) {
	c.log.WithField("url", c.url).Info("Connecting to bridge")

	conn, _, err := c.dialer.Dial(c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithField("error", err.Error()).Debug("Error sending pong")
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	c.log.Info("Connected to bridge")
	return conn, nil
}

func (c *bridgeClient) connection() (*websocket.Conn, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.dialLocked()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	return conn, nil
}

// drop forgets conn if it is still the current connection.
func (c *bridgeClient) drop(conn *websocket.Conn) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == conn {
		c.conn = nil
	}
	conn.Close()
}

func (c *bridgeClient) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.connMu.Lock()
		current := c.conn
		c.connMu.Unlock()
		if current != conn {
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout)); err != nil {
			c.log.WithField("error", err.Error()).Warn("Ping failed, marking bridge connection as dead")
			c.drop(conn)
			return
		}
	}
}

func (c *bridgeClient) timeout(action Action) time.Duration {
	if d, ok := c.timeouts[action]; ok {
		return d
	}
	return time.Minute
}

// call performs one round trip. Round trips are serialized on the single
// connection; a transport error drops the connection so the next call
// redials.
func (c *bridgeClient) call(ctx context.Context, action Action, payload interface{}) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	req := Request{ID: ulid.Make().String(), Action: action, Payload: payload}
	frame, err := c.json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %w", action, err)
	}

	deadline := time.Now().Add(c.timeout(action))
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	fields := log.Fields{"request_id": req.ID, "action": action}
	c.log.WithFields(fields).Debug("Sending bridge request")

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.drop(conn)
		return nil, fmt.Errorf("error sending %s request: %w", action, err)
	}
	conn.SetWriteDeadline(time.Time{})
	conn.SetReadDeadline(deadline)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn)
			return nil, fmt.Errorf("error reading %s response: %w", action, err)
		}

		var resp Response
		if err := c.json.Unmarshal(message, &resp); err != nil {
			c.log.WithFields(fields).WithField("error", err.Error()).Warn("Skipping malformed bridge frame")
			continue
		}
		if resp.ID != req.ID {
			c.log.WithFields(fields).WithField("response_id", resp.ID).Debug("Skipping response for another request")
			continue
		}

		conn.SetReadDeadline(time.Time{})
		fields["ok"] = resp.OK
		c.log.WithFields(fields).Debug("Received bridge response")
		return &resp, nil
	}
}

func (c *bridgeClient) Detect(ctx context.Context, imagePath string, confThreshold float64) ([]annotator.DetectedBox, error) {
	resp, err := c.call(ctx, ActionDetect, DetectPayload{ImagePath: imagePath, ConfThreshold: confThreshold})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &RemoteError{Action: ActionDetect, Message: resp.Error}
	}
	return resp.Boxes, nil
}

func (c *bridgeClient) Predict(ctx context.Context, imagePath string, modelTag string) ([]annotator.PredictedBox, error) {
	resp, err := c.call(ctx, ActionPredict, PredictPayload{ImagePath: imagePath, ModelTag: modelTag})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &RemoteError{Action: ActionPredict, Message: resp.Error}
	}
	if resp.Data == nil {
		return nil, nil
	}
	return resp.Data.Boxes, nil
}

// Train and Test hand back the raw response; ok=false is a result, not a
// transport error, because the output log is still useful to the caller.
func (c *bridgeClient) Train(ctx context.Context, payload TrainPayload) (*Response, error) {
	return c.call(ctx, ActionTrain, payload)
}

func (c *bridgeClient) Test(ctx context.Context, modelName string) (*Response, error) {
	return c.call(ctx, ActionTest, TestPayload{ModelName: modelName})
}
