package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionState enumerates the per-connection state machine. Closed is
// terminal; no frame is processed after it.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateClosed
)

// ConversationStore is the durable collaborator the core appends to and
// reads from. AppendMessage must return only after the message is
// durably ordered within its conversation.
type ConversationStore interface {
	FindConversationByID(ctx context.Context, id string) (*Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, msg *Message) error
}

// Presence mirrors registry membership into an external tracker so the
// HTTP layer can answer "is this user online". Failures are logged and
// never surfaced to the connection.
type Presence interface {
	SetOnline(ctx context.Context, identity string) error
	SetOffline(ctx context.Context, identity string) error
}

// Session owns one client connection and interprets its inbound frames.
// Frames are processed strictly in arrival order by the one goroutine
// running readLoop; the durable append for a chat frame completes (or
// fails) before any broadcast for it is attempted.
type Session struct {
	client      *Client
	registry    *Registry
	store       ConversationStore
	broadcaster *Broadcaster
	presence    Presence
	log         zerolog.Logger

	state    SessionState
	identity string
}

func NewSession(client *Client, registry *Registry, store ConversationStore, broadcaster *Broadcaster, presence Presence, log zerolog.Logger) *Session {
	return &Session{
		client:      client,
		registry:    registry,
		store:       store,
		broadcaster: broadcaster,
		presence:    presence,
		log:         log,
		state:       StateUnauthenticated,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState { return s.state }

// Identity returns the authenticated identity, or "" before auth.
func (s *Session) Identity() string { return s.identity }

// Run starts the write pump and reads frames until the transport
// closes, then releases the session's registration.
func (s *Session) Run(ctx context.Context) {
	go s.client.writePump()
	s.readLoop(ctx)
}

func (s *Session) readLoop(ctx context.Context) {
	conn := s.client.conn
	defer func() {
		s.Close(ctx)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		if s.state == StateAuthenticated && s.presence != nil {
			// Keep the presence key alive for as long as the peer answers pings.
			if err := s.presence.SetOnline(ctx, s.identity); err != nil {
				s.log.Debug().Err(err).Msg("presence refresh failed")
			}
		}
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		s.HandleFrame(ctx, raw)
		if s.state == StateClosed {
			return
		}
	}
}

// HandleFrame decodes and dispatches one inbound frame according to the
// session state. It is the single entry point for all inbound traffic.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) {
	if s.state == StateClosed {
		return
	}

	event, err := DecodeEvent(raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownType) && s.state == StateUnauthenticated:
			// Still unauthenticated: whatever this was, the only
			// acceptable frame is authenticate. Leave the connection
			// open so it can still do so.
			s.sendError("Unauthenticated")
		case errors.Is(err, ErrUnknownType):
			s.sendError("Unknown event type")
		default:
			s.sendError("Invalid message format")
		}
		return
	}

	if event.Type != EventAuthenticate && s.state != StateAuthenticated {
		s.sendError("Unauthenticated")
		return
	}

	switch event.Type {
	case EventAuthenticate:
		s.handleAuthenticate(ctx, event.Authenticate)
	case EventChat:
		s.handleChat(ctx, event.Chat)
	case EventTyping, EventStopTyping:
		s.handleTyping(ctx, event.Type, event.Typing)
	}
}

// handleAuthenticate is the one non-retryable step: a missing identity
// closes the transport. A second authenticate on an already
// authenticated session re-registers and acks.
func (s *Session) handleAuthenticate(ctx context.Context, event *AuthenticateEvent) {
	identity := strings.TrimSpace(event.UserID)
	if identity == "" {
		s.sendError("Authentication failed: missing identity")
		s.Close(ctx)
		return
	}

	if s.state == StateAuthenticated && s.identity != identity {
		// Re-authentication under a different identity releases the
		// old registration before claiming the new one.
		s.registry.Unregister(s.identity, s.client)
		s.setPresence(ctx, s.identity, false)
	}

	s.identity = identity
	s.state = StateAuthenticated
	s.registry.Register(identity, s.client)
	s.setPresence(ctx, identity, true)

	s.log.Info().Str("user", identity).Msg("user authenticated")
	s.send(marshalAck("authenticated"))
}

func (s *Session) handleChat(ctx context.Context, event *ChatEvent) {
	if event.SenderID != s.identity {
		s.log.Warn().
			Str("user", s.identity).
			Str("claimed", event.SenderID).
			Msg("rejecting chat frame with mismatched sender")
		s.sendError("Sender does not match authenticated user")
		return
	}

	content := strings.TrimSpace(event.Content)
	if content == "" {
		s.sendError("Invalid message format")
		return
	}

	conversation, err := s.store.FindConversationByID(ctx, event.ChatID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			s.sendError("Chat not found")
		} else {
			s.log.Error().Err(err).Str("chat", event.ChatID).Msg("conversation lookup failed")
			s.sendError("Failed to send message")
		}
		return
	}

	messageType := event.MessageType
	if messageType == "" {
		messageType = MessageTypeText
	}

	msg := &Message{
		ConversationID: conversation.ID,
		Sender:         s.identity,
		Content:        content,
		MessageType:    messageType,
		FileType:       event.FileType,
		Timestamp:      time.Now().UTC(),
	}

	// The append must complete before any broadcast so a participant
	// who re-reads history right after the push always finds the
	// message there.
	if err := s.store.AppendMessage(ctx, conversation.ID, msg); err != nil {
		s.log.Error().Err(err).Str("chat", conversation.ID).Msg("message append failed")
		s.sendError("Failed to send message")
		return
	}

	s.broadcaster.Broadcast(conversation.Participants(), marshalChat(conversation.ID, msg))
}

// handleTyping relays typing indicators without persistence. Lookup
// failures are swallowed on purpose: indicators are best-effort and a
// transient miss must never surface an error to the peer.
func (s *Session) handleTyping(ctx context.Context, eventType EventType, event *TypingEvent) {
	if event.SenderID != s.identity {
		s.log.Debug().
			Str("user", s.identity).
			Str("claimed", event.SenderID).
			Msg("dropping typing frame with mismatched sender")
		return
	}

	conversation, err := s.store.FindConversationByID(ctx, event.ChatID)
	if err != nil {
		s.log.Debug().Err(err).Str("chat", event.ChatID).Msg("typing lookup failed; dropping")
		return
	}

	s.broadcaster.Broadcast(conversation.Participants(), marshalTyping(eventType, conversation.ID, event.SenderID))
}

// Close transitions the session to its terminal state, releasing the
// registry entry (only if this session still owns it) and the outbound
// queue. Any in-flight append has already finished: frames are handled
// synchronously by the same goroutine that calls Close.
func (s *Session) Close(ctx context.Context) {
	if s.state == StateClosed {
		return
	}
	wasAuthenticated := s.state == StateAuthenticated
	s.state = StateClosed

	if wasAuthenticated {
		if s.registry.Unregister(s.identity, s.client) {
			s.setPresence(ctx, s.identity, false)
		}
		s.log.Info().Str("user", s.identity).Msg("user disconnected")
	}
	s.client.shutdown()
}

func (s *Session) setPresence(ctx context.Context, identity string, online bool) {
	if s.presence == nil {
		return
	}
	var err error
	if online {
		err = s.presence.SetOnline(ctx, identity)
	} else {
		err = s.presence.SetOffline(ctx, identity)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user", identity).Bool("online", online).Msg("presence update failed")
	}
}

func (s *Session) send(payload []byte) {
	s.client.TrySend(payload)
}

func (s *Session) sendError(reason string) {
	s.client.TrySend(marshalError(reason))
}
