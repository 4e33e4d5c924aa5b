package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, user *User) (*User, error) {
	var id int
	query := "INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id"

	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.Password).Scan(&id)
	if err != nil {
		return nil, err
	}

	user.ID = id
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	query := "SELECT id, username, email, password FROM users WHERE username = $1"

	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	u := &User{}
	query := "SELECT id, username, email, password FROM users WHERE id = $1"

	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repository) SearchUsers(ctx context.Context, query string) ([]User, error) {
	// We limit to 10 to keep it fast
	q := `SELECT id, username, email FROM users WHERE username ILIKE $1 LIMIT 10`
	rows, err := r.db.QueryContext(ctx, q, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListUsersWithStatus returns every other user annotated with the
// requester's friendship state toward them.
func (r *Repository) ListUsersWithStatus(ctx context.Context, requesterID int) ([]UserWithStatus, error) {
	q := `
		SELECT u.id, u.username, u.email,
		       EXISTS (SELECT 1 FROM friendships f WHERE f.user_id = $1 AND f.friend_id = u.id) AS is_friend,
		       EXISTS (SELECT 1 FROM friend_requests fr WHERE fr.sender_id = $1 AND fr.receiver_id = u.id) AS request_sent
		FROM users u
		WHERE u.id <> $1
		ORDER BY u.username
	`
	rows, err := r.db.QueryContext(ctx, q, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserWithStatus
	for rows.Next() {
		var u UserWithStatus
		var isFriend, requestSent bool
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &isFriend, &requestSent); err != nil {
			return nil, err
		}
		switch {
		case isFriend:
			u.Status = StatusFriend
		case requestSent:
			u.Status = StatusRequestSent
		default:
			u.Status = StatusNotSent
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) CreateFriendRequest(ctx context.Context, senderID, receiverID int) error {
	q := `INSERT INTO friend_requests (sender_id, receiver_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, senderID, receiverID)
	return err
}

func (r *Repository) HasFriendRequest(ctx context.Context, senderID, receiverID int) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2)`
	err := r.db.QueryRowContext(ctx, q, senderID, receiverID).Scan(&exists)
	return exists, err
}

func (r *Repository) DeleteFriendRequest(ctx context.Context, senderID, receiverID int) error {
	q := `DELETE FROM friend_requests WHERE sender_id = $1 AND receiver_id = $2`
	_, err := r.db.ExecContext(ctx, q, senderID, receiverID)
	return err
}

func (r *Repository) ListReceivedRequests(ctx context.Context, receiverID int) ([]User, error) {
	q := `
		SELECT u.id, u.username, u.email
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		WHERE fr.receiver_id = $1
		ORDER BY fr.created_at
	`
	rows, err := r.db.QueryContext(ctx, q, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) AreFriends(ctx context.Context, userA, userB int) (bool, error) {
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`
	err := r.db.QueryRowContext(ctx, q, userA, userB).Scan(&exists)
	return exists, err
}

// AddFriendship inserts both symmetric rows in one transaction.
func (r *Repository) AddFriendship(ctx context.Context, userA, userB int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := `INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, q, userA, userB); err != nil {
		return fmt.Errorf("add friendship: %w", err)
	}
	if _, err := tx.ExecContext(ctx, q, userB, userA); err != nil {
		return fmt.Errorf("add friendship: %w", err)
	}

	return tx.Commit()
}

func (r *Repository) RemoveFriendship(ctx context.Context, userA, userB int) error {
	q := `DELETE FROM friendships
	      WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)`
	_, err := r.db.ExecContext(ctx, q, userA, userB)
	return err
}

func (r *Repository) ListFriends(ctx context.Context, userID int) ([]User, error) {
	q := `
		SELECT u.id, u.username, u.email
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
