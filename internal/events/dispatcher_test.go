package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var seen []string
	dispatcher.Subscribe(EventUserRegistered, func(_ context.Context, event Event) error {
		seen = append(seen, event.UserID)
		return nil
	})
	dispatcher.Subscribe(EventUserRegistered, func(_ context.Context, event Event) error {
		seen = append(seen, event.UserID+"-second")
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventUserRegistered, UserID: "u1"}))
	assert.Equal(t, []string{"u1", "u1-second"}, seen)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var called bool
	dispatcher.Subscribe(EventPasswordChanged, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventPasswordChanged, func(_ context.Context, _ Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventPasswordChanged, UserID: "u1"}))
	assert.True(t, called)
}

func TestDispatcherIgnoresUnsubscribedEvents(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventUserDeleted, UserID: "u1"}))
}
