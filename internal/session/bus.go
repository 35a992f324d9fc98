package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Event is an auth-state change broadcast to every process on the device.
// Origin identifies the publisher so it can ignore its own events.
type Event struct {
	Type    string    `json:"type"`
	Origin  string    `json:"origin"`
	IDToken string    `json:"id_token,omitempty"`
	At      time.Time `json:"at"`
}

// Bus carries auth events between processes.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context) (<-chan Event, func() error, error)
}

// RedisBus is a Bus on a Redis pub/sub channel.
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(client *redis.Client, channel string) *RedisBus {
	return &RedisBus{client: client, channel: channel}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}
	return nil
}

// Subscribe returns decoded events until the returned close func is called.
// Messages that do not decode are dropped. Closing never waits on a reader.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func() error, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan Event, 8)
	done := make(chan struct{})
	var once sync.Once
	closeFn := func() error {
		var err error
		once.Do(func() {
			close(done)
			err = ps.Close()
		})
		return err
	}

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}()
	return out, closeFn, nil
}
