// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
)

const metadataKind = "event_kind"

// Config configures the bus.
type Config struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64
}

// DefaultConfig returns the bus defaults.
func DefaultConfig() Config {
	return Config{OutputBuffer: 64}
}

// Bus is the process-wide publish/subscribe channel. It is backed by a
// watermill GoChannel that blocks Publish until every subscriber has acked,
// which keeps events from one publisher in order for each subscriber.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates a bus. A nil logger logs through the zerolog adapter.
func NewBus(cfg Config, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = DefaultConfig().OutputBuffer
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.OutputBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		logger: logger,
	}
}

// Publish encodes ev and sends it on its kind's topic.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Kind(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataKind, string(ev.Kind()))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	if err := b.pubsub.Publish(string(ev.Kind()), msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind(), err)
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Kind())).Inc()
	return nil
}

// Subscribe delivers decoded events of the given kinds until ctx is done,
// then closes the returned channel. Cancelling ctx is the unsubscribe handle.
// With no kinds, every kind is delivered.
func (b *Bus) Subscribe(ctx context.Context, kinds ...Kind) (<-chan Event, error) {
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	sources := make([]<-chan *message.Message, 0, len(kinds))
	for _, kind := range kinds {
		ch, err := b.pubsub.Subscribe(ctx, string(kind))
		if err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", kind, err)
		}
		sources = append(sources, ch)
	}

	out := make(chan Event)
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(kind Kind, src <-chan *message.Message) {
			defer wg.Done()
			b.forward(ctx, kind, src, out)
		}(kinds[i], src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// forward decodes messages from src into out. Messages are acked once handed
// over, or when they cannot be decoded.
func (b *Bus) forward(ctx context.Context, kind Kind, src <-chan *message.Message, out chan<- Event) {
	for msg := range src {
		ev, err := Decode(kind, msg.Payload)
		if err != nil {
			b.logger.Error("Dropping undecodable event", err, watermill.LogFields{"kind": string(kind), "uuid": msg.UUID})
			msg.Ack()
			continue
		}
		select {
		case out <- ev:
			msg.Ack()
		case <-ctx.Done():
			msg.Ack()
			return
		}
	}
}

// Serve keeps the bus open until ctx is done, then closes it.
func (b *Bus) Serve(ctx context.Context) error {
	<-ctx.Done()
	if err := b.Close(); err != nil {
		return err
	}
	return ctx.Err()
}

// String identifies the bus in supervisor logs.
func (b *Bus) String() string {
	return "event-bus"
}

// Close shuts the bus down. Pending subscriber channels are closed.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// Decode rebuilds an event of the given kind from its JSON payload.
func Decode(kind Kind, payload []byte) (Event, error) {
	switch kind {
	case KindUserProfileUpdated:
		var ev UserProfileUpdated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindMusicStateUpdated:
		var ev MusicStateUpdated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindWeatherStateUpdated:
		var ev WeatherStateUpdated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}
