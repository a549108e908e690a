// Package events publishes generation events to NATS.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MJE43/powerball-superposition/internal/engine"
)

// Event types.
const (
	TypeGenerated = "numbers.generated"
	TypeSaved     = "combination.saved"
)

type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher receives engine events.
type Publisher interface {
	Generated(res engine.Result) error
	Emit(event Event) error
	Close()
}

// conn is the part of *nats.Conn the emitter needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type Emitter struct {
	conn    conn
	subject string
	now     func() time.Time
}

func NewEmitter(natsURL, subject string) (*Emitter, error) {
	nc, err := nats.Connect(natsURL, nats.Name("powerball-superposition"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return newEmitter(nc, subject), nil
}

func newEmitter(c conn, subject string) *Emitter {
	return &Emitter{conn: c, subject: subject, now: time.Now}
}

func (e *Emitter) Generated(res engine.Result) error {
	return e.Emit(Event{Type: TypeGenerated, Data: res})
}

// Emit publishes event as JSON on the configured subject, stamping it with the
// current time when Timestamp is zero.
func (e *Emitter) Emit(event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = e.now().UnixMilli()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.conn.Publish(e.subject, data)
}

func (e *Emitter) Close() {
	if e.conn != nil {
		e.conn.Close()
	}
}

// Nop discards every event. It is used when no NATS URL is configured.
type Nop struct{}

func (Nop) Generated(engine.Result) error { return nil }
func (Nop) Emit(Event) error { return nil }
func (Nop) Close() {}
