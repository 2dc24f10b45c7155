package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/keys"
)

// Message is the envelope for every frame on the scoreboard socket.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MessageType names a socket frame.
type MessageType string

const (
	// client -> server
	MessageTypeKeyDown        MessageType = "KeyDown"
	MessageTypeDurationAnswer MessageType = "DurationAnswer"

	// server -> client
	MessageTypeSnapshot       MessageType = "Snapshot"
	MessageTypePromptDuration MessageType = "PromptDuration"
)

// DurationAnswerPayload is the operator's reply to a PromptDuration frame.
type DurationAnswerPayload struct {
	PromptID  string `json:"prompt_id"`
	Value     string `json:"value"`
	Cancelled bool   `json:"cancelled"`
}

// PromptDurationPayload asks the display to collect a match duration in seconds.
type PromptDurationPayload struct {
	PromptID string `json:"prompt_id"`
	Default  string `json:"default"`
}

// NewMessage wraps payload in an envelope.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return &Message{Type: msgType, Data: data}, nil
}

// ParseClientMessage decodes the payload of a client frame. Unknown types return nil, nil.
func ParseClientMessage(msg *Message) (any, error) {
	switch msg.Type {
	case MessageTypeKeyDown:
		var payload keys.KeyEvent
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case MessageTypeDurationAnswer:
		var payload DurationAnswerPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil
	}
}
