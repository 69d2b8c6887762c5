package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/five82/circle/internal/apperr"
)

// Frame events.
const (
	eventJoin   = "phx_join"
	eventLeave  = "phx_leave"
	eventReply  = "phx_reply"
	eventChange = "postgres_changes"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512 * 1024
)

// Ensure Socket implements Feed at compile time.
var _ Feed = (*Socket)(nil)

// frame is one message on the socket in either direction.
type frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Ref     string          `json:"ref,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type joinPayload struct {
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type replyPayload struct {
	Status   string `json:"status"`
	Response struct {
		Reason string `json:"reason"`
	} `json:"response"`
}

// Socket is a Feed over a single websocket connection. Connection upkeep
// (heartbeats, reconnects) is left to the server and the caller.
type Socket struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[string]Handler
	pending map[string]chan error

	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// Dial connects to the realtime endpoint and starts the read loop.
func Dial(ctx context.Context, rawURL, token string, logger zerolog.Logger) (*Socket, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return nil, fmt.Errorf("%w: realtime url is empty", apperr.ErrValidation)
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, fmt.Errorf("%w: dial realtime: %w", apperr.ErrTransport, err)
	}
	conn.SetReadLimit(maxMessageSize)

	s := &Socket{
		conn:    conn,
		logger:  logger.With().Str("component", "realtime").Logger(),
		subs:    make(map[string]Handler),
		pending: make(map[string]chan error),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Subscribe joins a topic for table and waits for the server to acknowledge it.
func (s *Socket) Subscribe(ctx context.Context, table, filter string, h Handler) (func(), error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler", apperr.ErrValidation)
	}
	topic := "realtime:" + table + ":" + uuid.NewString()
	ref := uuid.NewString()
	payload, err := json.Marshal(joinPayload{Table: table, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("encode join: %w", err)
	}

	reply := make(chan error, 1)
	s.mu.Lock()
	s.subs[topic] = h
	s.pending[ref] = reply
	s.mu.Unlock()

	if err := s.write(frame{Topic: topic, Event: eventJoin, Ref: ref, Payload: payload}); err != nil {
		s.drop(topic, ref)
		return nil, err
	}

	select {
	case err := <-reply:
		if err != nil {
			s.drop(topic, ref)
			return nil, err
		}
	case <-ctx.Done():
		s.drop(topic, ref)
		return nil, ctx.Err()
	case <-s.done:
		s.drop(topic, ref)
		return nil, fmt.Errorf("%w: realtime socket closed", apperr.ErrTransport)
	}

	s.logger.Debug().Str("table", table).Str("filter", filter).Str("topic", topic).Msg("subscribed")

	var once sync.Once
	return func() {
		once.Do(func() {
			s.drop(topic, "")
			if err := s.write(frame{Topic: topic, Event: eventLeave, Ref: uuid.NewString()}); err != nil {
				s.logger.Debug().Err(err).Str("topic", topic).Msg("leave not sent")
			}
		})
	}, nil
}

// Done is closed when the read loop exits.
func (s *Socket) Done() <-chan struct{} {
	return s.done
}

// Close shuts the connection down.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Socket) write(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("%w: write %s: %w", apperr.ErrTransport, f.Event, err)
	}
	return nil
}

func (s *Socket) drop(topic, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, topic)
	if ref != "" {
		delete(s.pending, ref)
	}
}

func (s *Socket) readLoop() {
	defer close(s.done)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if s.closed.Load() || errors.As(err, &closeErr) {
				s.logger.Info().Msg("realtime socket closed")
			} else {
				s.logger.Warn().Err(err).Msg("realtime read failed")
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		switch f.Event {
		case eventReply:
			s.resolve(f)
		case eventChange:
			s.dispatch(f)
		default:
			s.logger.Debug().Str("event", f.Event).Str("topic", f.Topic).Msg("ignoring frame")
		}
	}
}

func (s *Socket) resolve(f frame) {
	s.mu.Lock()
	reply, ok := s.pending[f.Ref]
	delete(s.pending, f.Ref)
	s.mu.Unlock()
	if !ok {
		return
	}
	var p replyPayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		reply <- apperr.Shape("decode join reply: %v", err)
		return
	}
	if p.Status != "ok" {
		reason := p.Response.Reason
		if reason == "" {
			reason = p.Status
		}
		reply <- apperr.NewRejected(0, "subscribe "+f.Topic+": "+reason)
		return
	}
	reply <- nil
}

func (s *Socket) dispatch(f frame) {
	s.mu.Lock()
	h, ok := s.subs[f.Topic]
	s.mu.Unlock()
	if !ok {
		return
	}
	ev, err := Decode(f.Payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", f.Topic).Msg("dropping change")
		return
	}
	h(ev)
}
