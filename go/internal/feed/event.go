package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types emitted besides the command kinds themselves.
const (
	EventTypeTimerExpired = "TimerExpired"
)

// MatchEvent is one entry of the match feed.
type MatchEvent struct {
	ID        uuid.UUID       `json:"eventId"`
	Type      string          `json:"eventType"`
	MatchID   uuid.UUID       `json:"matchId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewMatchEvent marshals payload into a new event envelope.
func NewMatchEvent(matchID uuid.UUID, eventType string, at time.Time, payload any) (MatchEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return MatchEvent{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return MatchEvent{
		ID:        uuid.New(),
		Type:      eventType,
		MatchID:   matchID,
		Timestamp: at,
		Payload:   data,
	}, nil
}
