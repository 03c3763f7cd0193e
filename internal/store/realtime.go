package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"stackit/internal/config"
)

// Change is one remote data change delivered on a live subscription.
type Change struct {
	Event string // INSERT, UPDATE or DELETE
	Table string
}

type ChangeHandler func(Change)

// Realtime maintains one websocket to the Supabase Realtime endpoint and
// fans incoming change events out to table subscriptions. Handlers run on
// the read loop, so deliveries for a topic keep the remote emission order.
type Realtime struct {
	mu   sync.Mutex
	url  string
	conn *websocket.Conn
	subs map[string][]*Subscription
	done chan struct{}
	ref  int
	log  zerolog.Logger
}

// Subscription is a live registration on one topic. Release it with
// Unsubscribe when the owning view goes away, or the handler leaks.
type Subscription struct {
	rt      *Realtime
	topic   string
	handler ChangeHandler
	once    sync.Once
}

func NewRealtime(cfg config.SupabaseConfig, log zerolog.Logger) *Realtime {
	wsURL := cfg.URL
	if strings.HasPrefix(wsURL, "https") {
		wsURL = "wss" + strings.TrimPrefix(wsURL, "https")
	} else if strings.HasPrefix(wsURL, "http") {
		wsURL = "ws" + strings.TrimPrefix(wsURL, "http")
	}
	key := cfg.ServiceRoleKey
	if key == "" {
		key = cfg.AnonKey
	}
	wsURL += "/realtime/v1/websocket?apikey=" + key + "&vsn=1.0.0"

	return &Realtime{
		url:  wsURL,
		subs: make(map[string][]*Subscription),
		done: make(chan struct{}),
		log:  log.With().Str("component", "realtime").Logger(),
	}
}

func (r *Realtime) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("realtime dial: %w", err)
	}

	r.conn = conn
	r.done = make(chan struct{})

	go r.readLoop(conn)
	go r.heartbeat()

	r.log.Info().Msg("realtime connected")
	return nil
}

func (r *Realtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	close(r.done)
	r.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := r.conn.Close()
	r.conn = nil
	return err
}

// Subscribe registers a handler for data changes on a table, optionally
// narrowed by a PostgREST-style filter such as "question_id=eq.<id>".
func (r *Realtime) Subscribe(ctx context.Context, table, filter string, handler ChangeHandler) (*Subscription, error) {
	topic := "realtime:public:" + table
	if filter != "" {
		topic += ":" + filter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil, fmt.Errorf("realtime subscribe %s: not connected", topic)
	}

	sub := &Subscription{rt: r, topic: topic, handler: handler}
	joined := len(r.subs[topic]) > 0
	r.subs[topic] = append(r.subs[topic], sub)

	if !joined {
		if err := r.send(topic, "phx_join"); err != nil {
			r.subs[topic] = nil
			return nil, fmt.Errorf("join %s: %w", topic, err)
		}
	}
	return sub, nil
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		r := s.rt
		r.mu.Lock()
		defer r.mu.Unlock()

		subs := r.subs[s.topic]
		for i, sub := range subs {
			if sub == s {
				r.subs[s.topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(r.subs[s.topic]) == 0 {
			delete(r.subs, s.topic)
			if r.conn != nil {
				r.send(s.topic, "phx_leave")
			}
		}
	})
}

// send writes a phoenix envelope; callers hold r.mu.
func (r *Realtime) send(topic, event string) error {
	r.ref++
	msg := map[string]any{
		"topic":   topic,
		"event":   event,
		"payload": map[string]any{},
		"ref":     fmt.Sprintf("%d", r.ref),
	}
	return r.conn.WriteJSON(msg)
}

type envelope struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (r *Realtime) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-r.done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			r.log.Warn().Err(err).Msg("realtime connection lost")
			return
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue
		}

		switch env.Event {
		case "INSERT", "UPDATE", "DELETE":
		default:
			continue // joins, replies, heartbeats
		}

		table := tableFromTopic(env.Topic)
		r.mu.Lock()
		subs := append([]*Subscription(nil), r.subs[env.Topic]...)
		r.mu.Unlock()

		for _, sub := range subs {
			sub.handler(Change{Event: env.Event, Table: table})
		}
	}
}

func tableFromTopic(topic string) string {
	parts := strings.SplitN(topic, ":", 4)
	if len(parts) >= 3 {
		return parts[2]
	}
	return topic
}

func (r *Realtime) heartbeat() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.conn != nil {
				r.send("phoenix", "heartbeat")
			}
			r.mu.Unlock()
		}
	}
}
