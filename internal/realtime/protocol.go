package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Inbound event kinds. Anything else is rejected with an error frame.
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
)

// Outbound event kinds.
const (
	EventConnected         = "connected"
	EventJoinedRoom        = "joined_room"
	EventNewMessage        = "new_message"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
	EventMessageDeleted    = "message_deleted"
	EventError             = "error"
)

// Envelope is the frame shape in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	GroupID int64 `json:"groupId"`
}

type SendMessagePayload struct {
	Content string `json:"content"`
}

type ConnectedPayload struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

type JoinedRoomPayload struct {
	GroupID   int64  `json:"groupId"`
	GroupName string `json:"groupName"`
}

type NewMessagePayload struct {
	Message interface{} `json:"message"`
}

type TypingPayload struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name,omitempty"`
}

type MessageDeletedPayload struct {
	MessageID int64 `json:"messageId"`
	GroupID   int64 `json:"groupId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// RoomName is the broadcast room of a group.
func RoomName(groupID int64) string {
	return "group:" + strconv.FormatInt(groupID, 10)
}

// Encode builds an outbound frame.
func Encode(eventType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{Type: eventType, Data: raw})
}

func decodeEnvelope(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("missing event type")
	}
	return &env, nil
}

func decodePayload(env *Envelope, dst interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("missing payload for %s", env.Type)
	}
	return json.Unmarshal(env.Data, dst)
}
