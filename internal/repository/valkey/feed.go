// Package valkey publishes event snapshots over Valkey pub/sub so every
// session driving the same event sees the latest persisted state.
package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"stage-cue/internal/domain"
	"stage-cue/internal/logger"
)

// DefaultChannel carries snapshots when no channel is configured
const DefaultChannel = "stage-cue:event"

type envelope struct {
	Origin string        `json:"origin"`
	Event  *domain.Event `json:"event"`
}

// Feed implements repository.EventFeed on a Valkey channel. Snapshots this
// process published are not delivered back to it.
type Feed struct {
	client  valkey.Client
	channel string
	origin  string
	log     *logger.Logger
}

// Dial connects to the Valkey server at addr
func Dial(addr, channel string, log *logger.Logger) (*Feed, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", addr, err)
	}
	return NewFeed(client, channel, log), nil
}

// NewFeed wraps an existing client
func NewFeed(client valkey.Client, channel string, log *logger.Logger) *Feed {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Feed{
		client:  client,
		channel: channel,
		origin:  uuid.New().String(),
		log:     log.WithField("component", "event_feed"),
	}
}

// Publish sends a snapshot to every subscriber
func (f *Feed) Publish(ctx context.Context, event *domain.Event) error {
	data, err := encode(f.origin, event)
	if err != nil {
		return err
	}
	cmd := f.client.B().Publish().Channel(f.channel).Message(data).Build()
	if err := f.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to publish event snapshot: %w", err)
	}
	return nil
}

// Subscribe blocks delivering remote snapshots to fn until ctx is cancelled
func (f *Feed) Subscribe(ctx context.Context, fn func(*domain.Event)) error {
	cmd := f.client.B().Subscribe().Channel(f.channel).Build()
	err := f.client.Receive(ctx, cmd, func(msg valkey.PubSubMessage) {
		f.deliver(msg.Message, fn)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event feed subscription ended: %w", err)
	}
	return nil
}

// Close releases the client
func (f *Feed) Close() {
	f.client.Close()
}

func (f *Feed) deliver(data string, fn func(*domain.Event)) {
	event, origin, err := decode(data)
	if err != nil {
		f.log.Warn("dropping malformed event snapshot", map[string]interface{}{"error": err.Error()})
		return
	}
	if origin == f.origin {
		return
	}
	fn(event)
}

func encode(origin string, event *domain.Event) (string, error) {
	data, err := json.Marshal(envelope{Origin: origin, Event: event})
	if err != nil {
		return "", fmt.Errorf("failed to encode event snapshot: %w", err)
	}
	return string(data), nil
}

// decode returns the snapshot and its publisher. A nil event means the
// document was deleted.
func decode(data string) (*domain.Event, string, error) {
	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, "", fmt.Errorf("failed to decode event snapshot: %w", err)
	}
	return env.Event, env.Origin, nil
}
