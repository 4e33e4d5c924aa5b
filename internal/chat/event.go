package chat

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// EventType tags every inbound frame.
type EventType string

const (
	EventAuthenticate EventType = "authenticate"
	EventChat         EventType = "chat"
	EventTyping       EventType = "typing"
	EventStopTyping   EventType = "stop_typing"
)

// AuthenticateEvent carries the identity a connection claims.
// Presence of userId is checked by the session, not the schema,
// because a missing identity is an auth failure, not a malformed frame.
type AuthenticateEvent struct {
	UserID string `json:"userId"`
}

// ChatEvent is an inbound request to append and fan out one message.
type ChatEvent struct {
	ChatID      string `json:"chatId" validate:"required"`
	SenderID    string `json:"senderId" validate:"required"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text file"`
	FileType    string `json:"fileType"`
}

// TypingEvent is shared by typing and stop_typing frames.
type TypingEvent struct {
	ChatID   string `json:"chatId" validate:"required"`
	SenderID string `json:"senderId" validate:"required"`
}

// InboundEvent is the decoded tagged union. Exactly one of the payload
// pointers is set, matching Type.
type InboundEvent struct {
	Type         EventType
	Authenticate *AuthenticateEvent
	Chat         *ChatEvent
	Typing       *TypingEvent
}

var validate = validator.New()

type envelope struct {
	Type EventType `json:"type"`
}

// DecodeEvent parses one frame into the event union, validating the
// payload schema of the declared type. It returns ErrInvalidFormat for
// frames that are not JSON or fail validation, and ErrUnknownType for
// unrecognized type tags.
func DecodeEvent(raw []byte) (*InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	switch env.Type {
	case EventAuthenticate:
		ev := &AuthenticateEvent{}
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return &InboundEvent{Type: env.Type, Authenticate: ev}, nil

	case EventChat:
		ev := &ChatEvent{}
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := validate.Struct(ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return &InboundEvent{Type: env.Type, Chat: ev}, nil

	case EventTyping, EventStopTyping:
		ev := &TypingEvent{}
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := validate.Struct(ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return &InboundEvent{Type: env.Type, Typing: ev}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// ---------------------------------------------
// Outbound payloads
// ---------------------------------------------

type ackReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type chatPayload struct {
	Type   EventType `json:"type"`
	ChatID string    `json:"chatId"`
	Msg    *Message  `json:"message"`
}

type typingPayload struct {
	Type     EventType `json:"type"`
	ChatID   string    `json:"chatId"`
	SenderID string    `json:"senderId"`
}

func marshalAck(message string) []byte {
	b, _ := json.Marshal(ackReply{Status: "success", Message: message})
	return b
}

func marshalError(reason string) []byte {
	b, _ := json.Marshal(errorReply{Status: "error", Error: reason})
	return b
}

func marshalChat(chatID string, msg *Message) []byte {
	b, _ := json.Marshal(chatPayload{Type: EventChat, ChatID: chatID, Msg: msg})
	return b
}

func marshalTyping(eventType EventType, chatID, senderID string) []byte {
	b, _ := json.Marshal(typingPayload{Type: eventType, ChatID: chatID, SenderID: senderID})
	return b
}
