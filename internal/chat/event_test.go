package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeEventAuthenticate(t *testing.T) {
	req := require.New(t)

	event, err := DecodeEvent([]byte(`{"type":"authenticate","userId":"42"}`))
	req.NoError(err)
	req.Equal(EventAuthenticate, event.Type)
	req.NotNil(event.Authenticate)
	req.Equal("42", event.Authenticate.UserID)
}

func TestDecodeEventAuthenticateMissingUserIDStillDecodes(t *testing.T) {
	// A missing identity is an auth failure handled by the session,
	// not a malformed frame.
	event, err := DecodeEvent([]byte(`{"type":"authenticate"}`))
	require.NoError(t, err)
	require.Equal(t, "", event.Authenticate.UserID)
}

func TestDecodeEventChat(t *testing.T) {
	req := require.New(t)

	event, err := DecodeEvent([]byte(`{"type":"chat","chatId":"c1","senderId":"42","content":"hi","messageType":"file","fileType":"image/png"}`))
	req.NoError(err)
	req.Equal(EventChat, event.Type)
	req.Equal("c1", event.Chat.ChatID)
	req.Equal("42", event.Chat.SenderID)
	req.Equal("hi", event.Chat.Content)
	req.Equal("file", event.Chat.MessageType)
	req.Equal("image/png", event.Chat.FileType)
}

func TestDecodeEventChatMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing chatId":   `{"type":"chat","senderId":"42","content":"hi"}`,
		"missing senderId": `{"type":"chat","chatId":"c1","content":"hi"}`,
		"missing content":  `{"type":"chat","chatId":"c1","senderId":"42"}`,
		"bad messageType":  `{"type":"chat","chatId":"c1","senderId":"42","content":"hi","messageType":"video"}`,
	}
	for name, frame := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(frame))
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestDecodeEventTypingVariants(t *testing.T) {
	req := require.New(t)

	for _, typ := range []EventType{EventTyping, EventStopTyping} {
		event, err := DecodeEvent([]byte(`{"type":"` + string(typ) + `","chatId":"c1","senderId":"42"}`))
		req.NoError(err)
		req.Equal(typ, event.Type)
		req.Equal("c1", event.Typing.ChatID)
		req.Equal("42", event.Typing.SenderID)
	}

	_, err := DecodeEvent([]byte(`{"type":"typing","chatId":"c1"}`))
	req.ErrorIs(err, ErrInvalidFormat)
}

func TestDecodeEventUnknownType(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"type":"dance","chatId":"c1"}`))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeEventNotJSON(t *testing.T) {
	_, err := DecodeEvent([]byte(`{nope`))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMarshalChatWireFormat(t *testing.T) {
	req := require.New(t)

	msg := &Message{
		Sender:      "42",
		Content:     "hi",
		MessageType: MessageTypeText,
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var decoded map[string]any
	req.NoError(json.Unmarshal(marshalChat("c1", msg), &decoded))
	req.Equal("chat", decoded["type"])
	req.Equal("c1", decoded["chatId"])

	payload, ok := decoded["message"].(map[string]any)
	req.True(ok)
	req.Equal("42", payload["sender"])
	req.Equal("hi", payload["content"])
	req.Equal("text", payload["messageType"])
	req.NotContains(payload, "fileType")
}

func TestMarshalReplies(t *testing.T) {
	req := require.New(t)

	var ack map[string]any
	req.NoError(json.Unmarshal(marshalAck("authenticated"), &ack))
	req.Equal("success", ack["status"])
	req.Equal("authenticated", ack["message"])

	var failure map[string]any
	req.NoError(json.Unmarshal(marshalError("Chat not found"), &failure))
	req.Equal("error", failure["status"])
	req.Equal("Chat not found", failure["error"])

	var typing map[string]any
	req.NoError(json.Unmarshal(marshalTyping(EventStopTyping, "c1", "42"), &typing))
	req.Equal("stop_typing", typing["type"])
	req.Equal("c1", typing["chatId"])
	req.Equal("42", typing["senderId"])
}
