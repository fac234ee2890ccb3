package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		received = append(received, e)
		return nil
	})
	bus.Subscribe(EventBookingDeleted, func(e *Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	payload := BookingEventPayload{BookingID: "b-1", Customer: "김철수", BookDate: "2024-06-15"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var got BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &got))
	assert.Equal(t, "b-1", got.BookingID)
	assert.Equal(t, "김철수", got.Customer)
}

func TestEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingsCleared, func(e *Event) error {
		calls++
		return errors.New("boom")
	})
	bus.Subscribe(EventBookingsCleared, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingsCleared, nil))
	assert.Equal(t, 2, calls)
}

func TestEventBus_NilBusIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}
