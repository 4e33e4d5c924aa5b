package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chat-relay/internal/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	res, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		http.Error(w, "could not register user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.Service.GetProfile(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	users, err := h.Service.SearchUsers(r.Context(), query)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []User{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *Handler) AllUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.Service.ListUsers(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []UserWithStatus{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req FriendRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiverID <= 0 {
		http.Error(w, "receiver_id is required", http.StatusBadRequest)
		return
	}
	if req.ReceiverID == userID {
		http.Error(w, "cannot befriend yourself", http.StatusBadRequest)
		return
	}

	if err := h.Service.SendFriendRequest(r.Context(), userID, req.ReceiverID); err != nil {
		writeFriendError(w, err)
		return
	}

	writeMessage(w, "friend request sent")
}

func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req FriendDecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SenderID <= 0 {
		http.Error(w, "sender_id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.AcceptFriendRequest(r.Context(), userID, req.SenderID); err != nil {
		writeFriendError(w, err)
		return
	}

	writeMessage(w, "friend request accepted")
}

func (h *Handler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req FriendDecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SenderID <= 0 {
		http.Error(w, "sender_id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeclineFriendRequest(r.Context(), userID, req.SenderID); err != nil {
		writeFriendError(w, err)
		return
	}

	writeMessage(w, "friend request declined")
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RemoveFriendPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FriendID <= 0 {
		http.Error(w, "friend_id is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveFriend(r.Context(), userID, req.FriendID); err != nil {
		http.Error(w, "could not remove friend", http.StatusInternalServerError)
		return
	}

	writeMessage(w, "friend removed")
}

func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.Service.ListFriends(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not list friends", http.StatusInternalServerError)
		return
	}
	if friends == nil {
		friends = []User{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(friends)
}

func (h *Handler) ReceivedRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserKey).(int)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.Service.ListReceivedRequests(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not list requests", http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []User{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requests)
}

func writeFriendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyFriends), errors.Is(err, ErrRequestExists), errors.Is(err, ErrRequestNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func writeMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
