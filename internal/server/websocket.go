package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/form"
	"github.com/conneroisu/contactform/internal/view"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the peer.
	maxMessageSize = 64 << 10
)

// Frame types exchanged on /ws.
const (
	FrameChange    = "change"
	FrameSubmit    = "submit"
	FrameReset     = "reset"
	FrameState     = "state"
	FrameSubmitted = "submitted"
	FrameError     = "error"
)

// ClientFrame is sent by the browser.
type ClientFrame struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// ServerFrame is sent back after every client frame.
type ServerFrame struct {
	Type    string       `json:"type"`
	Valid   bool         `json:"valid"`
	Errors  form.Errors  `json:"errors"`
	Values  *form.Values `json:"values,omitempty"`
	Results *string      `json:"results,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.checkOrigin(r); err != nil {
		s.logger.Warn(r.Context(), err, "Rejected websocket origin", "ip", getClientIP(r))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// checkOrigin above applies the configured allow list.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s.trackSession(conn)
	defer func() {
		s.untrackSession(conn)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	sess := &session{form: s.newForm()}
	logger := s.logger.With("ip", getClientIP(r))
	logger.Debug(r.Context(), "Session opened")

	ctx := r.Context()
	if err := s.writeFrame(ctx, conn, sess.stateFrame()); err != nil {
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				logger.Warn(ctx, err, "Session read failed")
			}
			logger.Debug(ctx, "Session closed", "submits", sess.form.Attempts())
			return
		}

		var reply ServerFrame
		if typ != websocket.MessageText {
			reply = errorFrame(errors.NewProtocolError(errors.ErrCodeBadFrame, "expected a text frame"))
		} else {
			reply = sess.handle(ctx, data)
		}
		if reply.Type == FrameError {
			logger.Debug(ctx, "Rejected frame", "reason", reply.Message)
		}

		if err := s.writeFrame(ctx, conn, reply); err != nil {
			logger.Warn(ctx, err, "Session write failed")
			return
		}
	}
}

func (s *Server) writeFrame(ctx context.Context, conn *websocket.Conn, frame ServerFrame) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, frame)
}

// session is the per-connection form state.
type session struct {
	form *form.ContactForm
}

func (sess *session) handle(ctx context.Context, data []byte) ServerFrame {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return errorFrame(errors.NewProtocolError(errors.ErrCodeBadFrame, "invalid JSON frame"))
	}

	switch frame.Type {
	case FrameChange:
		field, ok := form.ParseField(frame.Field)
		if !ok {
			return errorFrame(errors.ErrUnknownField(frame.Field))
		}
		// ParseField guarantees the field exists.
		_ = sess.form.Change(field, frame.Value)
		return sess.stateFrame()

	case FrameSubmit:
		if !sess.form.Submit() {
			return sess.stateFrame()
		}
		submitted, _ := sess.form.Submitted()
		results, err := view.RenderString(ctx, view.Results(submitted))
		if err != nil {
			return errorFrame(errors.NewInternalError(errors.ErrCodeRender, "failed to render results", err))
		}
		out := sess.stateFrame()
		out.Type = FrameSubmitted
		out.Values = &submitted
		out.Results = &results
		return out

	case FrameReset:
		sess.form.Reset()
		out := sess.stateFrame()
		empty := ""
		out.Results = &empty
		return out

	default:
		return errorFrame(errors.NewProtocolError(errors.ErrCodeBadFrame, "unknown frame type: "+frame.Type))
	}
}

func (sess *session) stateFrame() ServerFrame {
	return ServerFrame{
		Type:   FrameState,
		Valid:  sess.form.Valid(),
		Errors: sess.form.VisibleErrors(),
	}
}

func errorFrame(err *errors.AppError) ServerFrame {
	return ServerFrame{
		Type:    FrameError,
		Errors:  form.Errors{},
		Message: err.Error(),
	}
}
