package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs []published
	err  error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, published{subject: subject, data: data})
	return nil
}

func TestNATSPublisher_PublishesEnvelope(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "scoreboard.events")

	matchID := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event, err := NewMatchEvent(matchID, "IncrementPoint", at, map[string]string{"side": "left"})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, conn.msgs, 1)
	assert.Equal(t, "scoreboard.events.IncrementPoint", conn.msgs[0].subject)

	var envelope struct {
		EventID   string            `json:"eventId"`
		EventType string            `json:"eventType"`
		MatchID   string            `json:"matchId"`
		Timestamp time.Time         `json:"timestamp"`
		Payload   map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(conn.msgs[0].data, &envelope))
	assert.Equal(t, event.ID.String(), envelope.EventID)
	assert.Equal(t, "IncrementPoint", envelope.EventType)
	assert.Equal(t, matchID.String(), envelope.MatchID)
	assert.True(t, at.Equal(envelope.Timestamp))
	assert.Equal(t, "left", envelope.Payload["side"])
}

func TestNATSPublisher_WrapsConnError(t *testing.T) {
	boom := errors.New("boom")
	pub := NewNATSPublisher(&fakeConn{err: boom}, "scoreboard.events")

	event, err := NewMatchEvent(uuid.New(), EventTypeTimerExpired, time.Now(), struct{}{})
	require.NoError(t, err)

	err = pub.Publish(context.Background(), event)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "scoreboard.events.TimerExpired")
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "p")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event, err := NewMatchEvent(uuid.New(), "ResetAll", time.Now(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, pub.Publish(ctx, event), context.Canceled)
	assert.Empty(t, conn.msgs)
}

func TestNewMatchEvent_RejectsUnmarshalablePayload(t *testing.T) {
	_, err := NewMatchEvent(uuid.New(), "Bad", time.Now(), make(chan int))
	assert.Error(t, err)
}
