package user

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// UserWithStatus decorates a user with the requester's friendship
// state: "friend", "request_sent", or "not_sent".
type UserWithStatus struct {
	User
	Status string `json:"status"`
}

const (
	StatusFriend      = "friend"
	StatusRequestSent = "request_sent"
	StatusNotSent     = "not_sent"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ID          int    `json:"id"`
	Username    string `json:"username"`
}

type FriendRequestPayload struct {
	ReceiverID int `json:"receiver_id"`
}

type FriendDecisionPayload struct {
	SenderID int `json:"sender_id"`
}

type RemoveFriendPayload struct {
	FriendID int `json:"friend_id"`
}
