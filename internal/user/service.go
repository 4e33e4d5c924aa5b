package user

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrRequestExists      = errors.New("friend request already sent")
	ErrRequestNotFound    = errors.New("friend request not found")
)

// ConversationStarter lets accepting a friend request create the
// pair's conversation without this package knowing the chat internals.
type ConversationStarter interface {
	EnsureConversation(ctx context.Context, userA, userB int) error
}

type Service struct {
	repo          *Repository
	conversations ConversationStarter
	jwtSecret     string
	tokenTTL      time.Duration
}

type Claims struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewService(repo *Repository, conversations ConversationStarter, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:          repo,
		conversations: conversations,
		jwtSecret:     secret,
		tokenTTL:      tokenTTL,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPwd),
	}

	if _, err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:       u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "chat-relay",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
		},
	})

	ss, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: ss,
		ID:          u.ID,
		Username:    u.Username,
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (int, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidCredentials
	}

	return claims.ID, claims.Username, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) SearchUsers(ctx context.Context, query string) ([]User, error) {
	return s.repo.SearchUsers(ctx, query)
}

func (s *Service) ListUsers(ctx context.Context, requesterID int) ([]UserWithStatus, error) {
	return s.repo.ListUsersWithStatus(ctx, requesterID)
}

func (s *Service) SendFriendRequest(ctx context.Context, senderID, receiverID int) error {
	if _, err := s.repo.GetUserByID(ctx, receiverID); err != nil {
		return err
	}

	friends, err := s.repo.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if friends {
		return ErrAlreadyFriends
	}

	pending, err := s.repo.HasFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if pending {
		return ErrRequestExists
	}

	return s.repo.CreateFriendRequest(ctx, senderID, receiverID)
}

// AcceptFriendRequest turns a pending request into a friendship and
// makes sure the pair's conversation exists so they can chat at once.
func (s *Service) AcceptFriendRequest(ctx context.Context, receiverID, senderID int) error {
	pending, err := s.repo.HasFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if !pending {
		return ErrRequestNotFound
	}

	if err := s.repo.AddFriendship(ctx, receiverID, senderID); err != nil {
		return err
	}
	if err := s.repo.DeleteFriendRequest(ctx, senderID, receiverID); err != nil {
		return err
	}

	if s.conversations != nil {
		if err := s.conversations.EnsureConversation(ctx, receiverID, senderID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) DeclineFriendRequest(ctx context.Context, receiverID, senderID int) error {
	pending, err := s.repo.HasFriendRequest(ctx, senderID, receiverID)
	if err != nil {
		return err
	}
	if !pending {
		return ErrRequestNotFound
	}
	return s.repo.DeleteFriendRequest(ctx, senderID, receiverID)
}

func (s *Service) RemoveFriend(ctx context.Context, userID, friendID int) error {
	return s.repo.RemoveFriendship(ctx, userID, friendID)
}

func (s *Service) ListFriends(ctx context.Context, userID int) ([]User, error) {
	return s.repo.ListFriends(ctx, userID)
}

func (s *Service) ListReceivedRequests(ctx context.Context, receiverID int) ([]User, error) {
	return s.repo.ListReceivedRequests(ctx, receiverID)
}
