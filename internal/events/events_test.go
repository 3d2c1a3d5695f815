package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

var _ Publisher = (*Bus)(nil)

func TestBus_PublishConsume(t *testing.T) {
	log := zap.NewNop()
	pubsub := NewGoChannel(log)
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Envelope, 4)
	require.NoError(t, Consume(ctx, pubsub, log, func(_ context.Context, e Envelope) error {
		got <- e
		return nil
	}))

	bus := NewBus(pubsub)
	effects := []model.Effect{
		{Kind: model.EffectAchievementUnlocked, AchievementID: "first-note"},
		{Kind: model.EffectCoinsAwarded, Amount: 50},
	}
	require.NoError(t, bus.Publish(ctx, "p1", 42, effects))

	// gochannel fans a multi-message publish out concurrently, so order is not kept.
	var received []model.Effect
	for i := range effects {
		select {
		case e := <-got:
			require.Equal(t, "p1", e.ProfileID)
			require.Equal(t, int64(42), e.At)
			received = append(received, e.Effect)
		case <-time.After(2 * time.Second):
			t.Fatalf("effect %d not delivered", i)
		}
	}
	require.ElementsMatch(t, effects, received)
}

func TestZapAdapter_With(t *testing.T) {
	a := NewZapAdapter(nil).With(watermill.LogFields{"topic": Topic})
	a.Info("ok", nil)
	a.Error("bad", errors.New("x"), watermill.LogFields{"n": 1})
}

func TestBus_EmptyPublishesNothing(t *testing.T) {
	require.NoError(t, NewBus(failingPublisher{}).Publish(context.Background(), "p", 0, nil))
	require.Error(t, NewBus(failingPublisher{}).Publish(context.Background(), "p", 0, []model.Effect{{Kind: model.EffectExpGained}}))
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("closed") }
func (failingPublisher) Close() error                              { return nil }
