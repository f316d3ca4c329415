package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/service"
	httpmw "github.com/cwrk-planet/watch-together/internal/transport/http/middleware"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cwrk-planet/watch-together/internal/transport/ws"

var (
	errBadRequest  = errors.New("bad request")
	errUnknownType = errors.New("unknown message type")
	errConnClosed  = errors.New("connection closed")
)

type WatchSvc interface {
	CreateRoom(ctx context.Context, c service.Caller) (service.RoomCreatedPayload, error)
	JoinRoom(ctx context.Context, c service.Caller, roomID, accessCode string) error
	SetVideo(ctx context.Context, c service.Caller, videoURL string) error
	PlayPause(ctx context.Context, c service.Caller, playing bool, at float64) error
	Seek(ctx context.Context, c service.Caller, at float64) error
	SendMessage(ctx context.Context, c service.Caller, text string) error
	LeaveRoom(ctx context.Context, c service.Caller)
	Disconnect(ctx context.Context, connID string)
}

type Config struct {
	PingEvery      time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	AllowedOrigins []string // пусто, любой Origin
	Tracer         trace.Tracer
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	svc      WatchSvc
	tracer   trace.Tracer

	pingEvery      time.Duration
	writeWait      time.Duration
	maxMessageSize int64
}

func NewServer(hub *Hub, svc WatchSvc, cfg Config) *Server {
	if cfg.PingEvery <= 0 {
		cfg.PingEvery = 15 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 5 * time.Second
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 64 << 10
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}

	return &Server{
		hub:    hub,
		svc:    svc,
		tracer: cfg.Tracer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
		pingEvery:      cfg.PingEvery,
		writeWait:      cfg.WriteWait,
		maxMessageSize: cfg.MaxMessageSize,
	}
}

// WS endpoint: GET /ws?access_token=... (логин кладёт AuthMiddleware)
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	login := httpmw.LoginFromCtx(r.Context())
	if login == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// ответ клиенту уже записал upgrader
		slog.Warn("ws upgrade failed", "login", login, "err", err)
		return
	}

	c := newWsConn(conn, uuid.NewString(), login, s.writeWait)
	s.hub.Register(c)
	slog.Info("ws connected", "conn", c.id, "login", login)

	ctx := r.Context()
	go s.writeLoop(ctx, c)
	s.readLoop(ctx, c)

	// закрытие соединения равно выходу из комнаты
	s.svc.Disconnect(ctx, c.id)
	s.hub.Unregister(c.id)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
	slog.Info("ws disconnected", "conn", c.id, "login", login)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(s.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ws read failed", "conn", c.id, "err", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))

		var msg Request
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			s.replyError(ctx, c, "", errBadRequest)
			continue
		}
		s.dispatch(ctx, c, msg)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait)); err != nil {
				slog.Debug("ws ping failed", "conn", c.id, "err", err)
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, c *wsConn, msg Request) {
	// один span на запрос: trace_id попадает во все логи его обработки
	ctx, span := s.tracer.Start(ctx, "ws.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("ws.request", msg.Type),
			attribute.String("ws.conn", c.id),
		))
	defer span.End()

	caller := service.Caller{ConnID: c.id, Login: c.login}

	var err error
	switch msg.Type {
	case TypeCreateRoom:
		_, err = s.svc.CreateRoom(ctx, caller)
	case TypeJoinRoom:
		var p JoinRoomRequest
		if err = decode(msg.Payload, &p); err == nil {
			err = s.svc.JoinRoom(ctx, caller, p.RoomID, p.AccessCode)
		}
	case TypeSetVideo:
		var p SetVideoRequest
		if err = decode(msg.Payload, &p); err == nil {
			err = s.svc.SetVideo(ctx, caller, p.VideoURL)
		}
	case TypePlayPause:
		var p PlayPauseRequest
		if err = decode(msg.Payload, &p); err == nil {
			err = s.svc.PlayPause(ctx, caller, p.IsPlaying, p.Time)
		}
	case TypeSeek:
		var p SeekRequest
		if err = decode(msg.Payload, &p); err == nil {
			err = s.svc.Seek(ctx, caller, p.Time)
		}
	case TypeSendMessage:
		var p SendMessageRequest
		if err = decode(msg.Payload, &p); err == nil {
			err = s.svc.SendMessage(ctx, caller, p.Message)
		}
	case TypeLeaveRoom:
		s.svc.LeaveRoom(ctx, caller)
	case TypePing:
		err = c.Send(Message{Type: TypePong})
	default:
		err = errUnknownType
	}

	if err != nil {
		code := s.replyError(ctx, c, msg.Type, err)
		span.SetAttributes(attribute.String("ws.error_code", code))
		if code == CodeInternal {
			span.RecordError(err)
		}
		span.SetStatus(otelcodes.Error, code)
	}
}

func (s *Server) replyError(ctx context.Context, c *wsConn, request string, err error) string {
	code, text := errorCode(err)
	if code == CodeInternal {
		slog.ErrorContext(ctx, "ws request failed", "conn", c.id, "request", request, "err", err)
	} else {
		slog.DebugContext(ctx, "ws request rejected", "conn", c.id, "request", request, "code", code)
	}

	if sendErr := c.Send(Message{
		Type:    TypeError,
		Payload: ErrorPayload{Code: code, Message: text, Request: request},
	}); sendErr != nil {
		slog.DebugContext(ctx, "ws error reply failed", "conn", c.id, "err", sendErr)
	}

	return code
}

func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return CodeNotAuthenticated, err.Error()
	case errors.Is(err, domain.ErrRoomNotFound):
		return CodeRoomNotFound, err.Error()
	case errors.Is(err, domain.ErrWrongAccessCode):
		return CodeWrongAccessCode, err.Error()
	case errors.Is(err, domain.ErrRoomFull):
		return CodeRoomFull, err.Error()
	case errors.Is(err, domain.ErrAlreadyMember):
		return CodeAlreadyMember, err.Error()
	case errors.Is(err, domain.ErrNotInRoom):
		return CodeNotInRoom, err.Error()
	case errors.Is(err, domain.ErrNotRoomMember):
		return CodeNotRoomMember, err.Error()
	case errors.Is(err, domain.ErrInvalidVideo):
		return CodeInvalidVideo, err.Error()
	case errors.Is(err, domain.ErrMessageEmpty):
		return CodeMessageEmpty, err.Error()
	case errors.Is(err, domain.ErrMessageTooLong):
		return CodeMessageTooLong, err.Error()
	case errors.Is(err, errBadRequest), errors.Is(err, errUnknownType):
		return CodeBadRequest, err.Error()
	default:
		return CodeInternal, "internal error"
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// --- helpers ---

// decode разбирает payload запроса; пустой или null payload не принимается.
func decode(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errBadRequest
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errBadRequest
	}

	return nil
}

type wsConn struct {
	conn      *websocket.Conn
	id        string
	login     string
	writeWait time.Duration

	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn, id, login string, writeWait time.Duration) *wsConn {
	return &wsConn{
		conn:      c,
		id:        id,
		login:     login,
		writeWait: writeWait,
		sendMu:    make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}

	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) ID() string { return c.id }
