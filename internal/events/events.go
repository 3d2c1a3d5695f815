// Package events publishes workspace effects on a watermill topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// Topic carries one message per effect.
const Topic = "crafty.effects"

// Envelope is the message payload.
type Envelope struct {
	ProfileID string       `json:"profileId"`
	At        int64        `json:"at"`
	Effect    model.Effect `json:"effect"`
}

// Publisher emits effects of one mutation.
type Publisher interface {
	Publish(ctx context.Context, profileID string, at int64, effects []model.Effect) error
}

// Bus publishes envelopes through a watermill publisher.
type Bus struct {
	pub message.Publisher
}

// NewBus wraps pub.
func NewBus(pub message.Publisher) *Bus { return &Bus{pub: pub} }

// NewGoChannel returns an in-process pub/sub logging through log. Messages of
// one Publish call may reach subscribers in any order.
func NewGoChannel(log *zap.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, NewZapAdapter(log))
}

// Publish sends every effect as its own message. Empty input publishes nothing.
func (b *Bus) Publish(ctx context.Context, profileID string, at int64, effects []model.Effect) error {
	if len(effects) == 0 {
		return nil
	}
	msgs := make([]*message.Message, 0, len(effects))
	for _, e := range effects {
		payload, err := json.Marshal(Envelope{ProfileID: profileID, At: at, Effect: e})
		if err != nil {
			return err
		}
		m := message.NewMessage(watermill.NewUUID(), payload)
		m.SetContext(ctx)
		m.Metadata.Set("kind", string(e.Kind))
		msgs = append(msgs, m)
	}
	if err := b.pub.Publish(Topic, msgs...); err != nil {
		return fmt.Errorf("publish effects: %w", err)
	}
	return nil
}

// Consume subscribes to Topic and calls handle for each envelope until ctx ends.
// Undecodable messages are acked and dropped; handler errors nack the message.
func Consume(ctx context.Context, sub message.Subscriber, log *zap.Logger, handle func(context.Context, Envelope) error) error {
	ch, err := sub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range ch {
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				log.Warn("drop effect message", zap.String("uuid", msg.UUID), zap.Error(err))
				msg.Ack()
				continue
			}
			if err := handle(ctx, env); err != nil {
				log.Warn("effect handler failed", zap.String("uuid", msg.UUID), zap.Error(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}
