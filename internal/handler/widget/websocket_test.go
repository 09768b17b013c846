package widget

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	"github.com/mahtabthestranger/Mdilink/internal/widget"
)

type stubAssistant struct {
	reply string
	gate  chan struct{}
	calls atomic.Int32
}

func (s *stubAssistant) Send(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, nil
}

func startServer(t *testing.T, asst widget.Assistant) *websocket.Conn {
	t.Helper()
	handler := New(func() *widget.Widget {
		return widget.New(asst, widget.WithLogger(zerolog.Nop()))
	}, zerolog.Nop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/widget/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) outgoingFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame outgoingFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

// readUntil collects frames up to and including the first of type typ.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) []outgoingFrame {
	t.Helper()
	var frames []outgoingFrame
	for {
		frame := readFrame(t, conn)
		frames = append(frames, frame)
		if frame.Type == typ {
			return frames
		}
	}
}

func frameTypes(frames []outgoingFrame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Type)
	}
	return out
}

func TestSessionStartsWithWelcomeAndState(t *testing.T) {
	conn := startServer(t, &stubAssistant{reply: "ok"})

	first := readFrame(t, conn)
	require.Equal(t, string(widget.EventMessageAppended), first.Type)
	require.NotNil(t, first.Message)
	assert.Equal(t, widget.DefaultWelcomeMessage, first.Message.Body)
	assert.Equal(t, chat.SenderAssistant, first.Message.Sender)

	second := readFrame(t, conn)
	assert.Equal(t, "state", second.Type)
	require.NotNil(t, second.State)
	assert.False(t, second.State.Open)
}

func TestToggleAndSubmitRoundTrip(t *testing.T) {
	conn := startServer(t, &stubAssistant{reply: "Sure, which department?"})
	readUntil(t, conn, "state")

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameToggle}))
	frames := readUntil(t, conn, string(widget.EventInputFocused))
	assert.Equal(t, []string{"widget.open", "input.focus"}, frameTypes(frames))
	assert.True(t, frames[0].State.Open)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameSubmit, Text: "Book an appointment"}))
	frames = readUntil(t, conn, string(widget.EventInputFocused))
	assert.Equal(t, []string{
		"message.appended", "typing.show", "input.lock",
		"typing.hide", "message.appended", "input.unlock", "input.focus",
	}, frameTypes(frames))
	assert.Equal(t, "Book an appointment", frames[0].Message.Body)
	assert.Equal(t, "Sure, which department?", frames[4].Message.Body)
	assert.False(t, frames[6].State.InputLocked)
}

func TestSubmitWhileAwaitingIsRejected(t *testing.T) {
	asst := &stubAssistant{reply: "done", gate: make(chan struct{})}
	conn := startServer(t, asst)
	readUntil(t, conn, "state")

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameSubmit, Text: "one"}))
	readUntil(t, conn, string(widget.EventInputLocked))

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameSubmit, Text: "two"}))
	busy := readFrame(t, conn)
	assert.Equal(t, "error", busy.Type)
	assert.Equal(t, "busy", busy.Error)

	close(asst.gate)
	frames := readUntil(t, conn, string(widget.EventInputFocused))
	assert.Equal(t, "done", frames[1].Message.Body)
	assert.EqualValues(t, 1, asst.calls.Load())

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameSubmit, Text: "three"}))
	frames = readUntil(t, conn, string(widget.EventInputFocused))
	assert.Equal(t, "three", frames[0].Message.Body)
	assert.EqualValues(t, 2, asst.calls.Load())
}

func TestUnknownFrameType(t *testing.T) {
	conn := startServer(t, &stubAssistant{})
	readUntil(t, conn, "state")

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: "dance"}))
	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Contains(t, frame.Error, "dance")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	frame = readFrame(t, conn)
	assert.Equal(t, "invalid frame", frame.Error)
}

func TestFramesAfterCloseCarryClosedState(t *testing.T) {
	asst := &stubAssistant{reply: "done", gate: make(chan struct{})}
	conn := startServer(t, asst)
	readUntil(t, conn, "state")

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameOpen}))
	readUntil(t, conn, string(widget.EventInputFocused))

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameSubmit, Text: "one"}))
	frames := readUntil(t, conn, string(widget.EventInputLocked))
	assert.True(t, frames[len(frames)-1].State.Open)

	require.NoError(t, conn.WriteJSON(inboundFrame{Type: frameClose}))
	closed := readUntil(t, conn, string(widget.EventClosed))
	assert.False(t, closed[len(closed)-1].State.Open)
	assert.True(t, closed[len(closed)-1].State.AwaitingResponse)

	close(asst.gate)
	frames = readUntil(t, conn, string(widget.EventInputFocused))
	assert.Equal(t, []string{
		"typing.hide", "message.appended", "input.unlock", "input.focus",
	}, frameTypes(frames))
	for _, f := range frames {
		require.NotNil(t, f.State, f.Type)
		assert.False(t, f.State.Open, f.Type)
	}
	assert.False(t, frames[2].State.AwaitingResponse)
	assert.False(t, frames[2].State.InputLocked)
}
