package widget

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	"github.com/mahtabthestranger/Mdilink/internal/widget"
)

const writeTimeout = 10 * time.Second

// Factory builds a fresh widget for each connection.
type Factory func() *widget.Widget

// Handler mounts one widget per websocket connection and streams its render
// effects to the host page.
type Handler struct {
	newWidget Factory
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// New creates the websocket adapter.
func New(newWidget Factory, logger zerolog.Logger) *Handler {
	return &Handler{
		newWidget: newWidget,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the widget socket.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/ws", h.handleWebSocket)
}

// Inbound frame types.
const (
	frameSubmit = "submit"
	frameToggle = "toggle"
	frameOpen   = "open"
	frameClose  = "close"
)

type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type outgoingFrame struct {
	Type      string                `json:"type"`
	Message   *chat.Message         `json:"message,omitempty"`
	State     *widget.StateSnapshot `json:"state,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp int64                 `json:"timestamp"`
}

// session is the server side of one mounted widget.
type session struct {
	conn    *websocket.Conn
	widget  *widget.Widget
	logger  zerolog.Logger
	writeMu sync.Mutex
	submits sync.WaitGroup
	sending atomic.Bool
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := &session{
		conn:   conn,
		widget: h.newWidget(),
		logger: h.logger,
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.submits.Wait()
		_ = conn.Close()
	}()

	unsubscribe := s.widget.Subscribe(widget.ObserverFunc(s.forward))
	defer unsubscribe()

	s.widget.Initialize()
	s.sendWithState(outgoingFrame{Type: "state"})

	h.logger.Debug().Msg("widget session opened")
	s.readLoop(ctx)
	h.logger.Debug().Msg("widget session closed")
}

func (s *session) readLoop(ctx context.Context) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn().Err(err).Msg("widget socket closed unexpectedly")
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.sendError("invalid frame")
			continue
		}
		s.dispatch(ctx, frame)
	}
}

func (s *session) dispatch(ctx context.Context, frame inboundFrame) {
	switch frame.Type {
	case frameSubmit:
		// Turns run off the read loop so toggles keep working while a reply
		// is pending. sending is the server copy of the disabled send button;
		// forward clears it when the widget unlocks its input.
		if !s.sending.CompareAndSwap(false, true) {
			s.sendError("busy")
			return
		}
		s.submits.Add(1)
		go func() {
			defer s.submits.Done()
			err := s.widget.Submit(ctx, frame.Text)
			if err != nil {
				s.sending.Store(false)
			}
			if errors.Is(err, widget.ErrBusy) {
				s.sendError("busy")
			}
		}()
	case frameToggle:
		s.widget.Toggle()
	case frameOpen:
		s.widget.Open()
	case frameClose:
		s.widget.Close()
	default:
		s.sendError("unknown frame type: " + frame.Type)
	}
}

func (s *session) forward(ev widget.Event) {
	if ev.Type == widget.EventInputUnlocked {
		s.sending.Store(false)
	}
	s.sendWithState(outgoingFrame{
		Type:    string(ev.Type),
		Message: ev.Message,
	})
}

func (s *session) sendError(msg string) {
	s.send(outgoingFrame{Type: "error", Error: msg})
}

func (s *session) send(frame outgoingFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.write(frame)
}

// sendWithState stamps the frame with the widget state read under the write
// lock, so snapshots never go backwards across frames written by the read
// loop and a pending submit.
func (s *session) sendWithState(frame outgoingFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	state := s.widget.State()
	frame.State = &state
	s.write(frame)
}

func (s *session) write(frame outgoingFrame) {
	frame.Timestamp = time.Now().UnixMilli()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(frame); err != nil {
		s.logger.Debug().Err(err).Str("frame", frame.Type).Msg("widget frame dropped")
	}
}
