package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chat-relay/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for now (Dev mode)
	},
}

// OnlineChecker is the read side of the presence tracker, used by the
// HTTP surface only.
type OnlineChecker interface {
	IsOnline(ctx context.Context, identity string) (bool, error)
}

// Handler exposes the websocket upgrade endpoint and the conversation
// REST API around the relay core.
type Handler struct {
	registry    *Registry
	repo        *Repository
	broadcaster *Broadcaster
	presence    Presence
	online      OnlineChecker
	log         zerolog.Logger
}

func NewHandler(registry *Registry, repo *Repository, broadcaster *Broadcaster, presence Presence, online OnlineChecker, log zerolog.Logger) *Handler {
	return &Handler{
		registry:    registry,
		repo:        repo,
		broadcaster: broadcaster,
		presence:    presence,
		online:      online,
		log:         log,
	}
}

// ServeWs upgrades the connection and hands it to a fresh session. The
// session starts unauthenticated: the HTTP-level JWT got the client
// here, but the relay still requires an in-band authenticate frame
// before it will route anything.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(conn)
	session := NewSession(client, h.registry, h.repo, h.broadcaster, h.presence, h.log)

	// The request context dies with this handler; the session outlives it.
	go session.Run(context.Background())
}

type startConversationRequest struct {
	FriendID int `json:"friend_id"`
}

// StartConversation finds or creates the conversation between the
// caller and a friend. Safe to call repeatedly; every call converges on
// the same conversation.
func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req startConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID <= 0 {
		http.Error(w, "friend_id is required", http.StatusBadRequest)
		return
	}
	if req.FriendID == userID {
		http.Error(w, "cannot start a conversation with yourself", http.StatusBadRequest)
		return
	}

	conversation, err := h.repo.FindOrCreateConversation(r.Context(), strconv.Itoa(userID), strconv.Itoa(req.FriendID))
	if err != nil {
		h.log.Error().Err(err).Msg("find-or-create conversation failed")
		http.Error(w, "could not start conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversation)
}

// GetChatHistory returns a conversation's messages in append order.
// Only participants may read it.
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}

	member, err := h.repo.IsParticipant(r.Context(), conversationID, strconv.Itoa(userID))
	if err != nil {
		h.log.Error().Err(err).Msg("participant check failed")
		http.Error(w, "could not load messages", http.StatusInternalServerError)
		return
	}
	if !member {
		http.Error(w, "Chat not found", http.StatusNotFound)
		return
	}

	messages, err := h.repo.History(r.Context(), conversationID)
	if err != nil {
		h.log.Error().Err(err).Msg("history load failed")
		http.Error(w, "could not load messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []*Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// PresenceStatus reports whether a user currently holds a live
// connection, as seen by the presence tracker.
func (h *Handler) PresenceStatus(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "userID")
	if identity == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	online := false
	if h.online != nil {
		var err error
		online, err = h.online.IsOnline(r.Context(), identity)
		if err != nil {
			h.log.Warn().Err(err).Str("user", identity).Msg("presence check failed")
			http.Error(w, "presence unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"userId": identity, "online": online})
}
