package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Repository is the Postgres-backed conversation store. The unique
// constraint on the normalized participant pair is the arbiter that
// makes concurrent first-contact creation yield exactly one row.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// normalizePair orders a participant pair so {A,B} and {B,A} address
// the same conversation row.
func normalizePair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func parseIdentity(identity string) (int, error) {
	id, err := strconv.Atoi(identity)
	if err != nil {
		return 0, fmt.Errorf("invalid identity %q: %w", identity, err)
	}
	return id, nil
}

func (r *Repository) FindConversationByID(ctx context.Context, id string) (*Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrConversationNotFound, id)
	}

	c := &Conversation{}
	query := `SELECT id, participant_a, participant_b, created_at FROM conversations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrConversationNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (r *Repository) FindConversationByParticipants(ctx context.Context, identityA, identityB string) (*Conversation, error) {
	a, err := parseIdentity(identityA)
	if err != nil {
		return nil, err
	}
	b, err := parseIdentity(identityB)
	if err != nil {
		return nil, err
	}
	a, b = normalizePair(a, b)

	c := &Conversation{}
	query := `SELECT id, participant_a, participant_b, created_at FROM conversations WHERE participant_a = $1 AND participant_b = $2`
	err = r.db.QueryRowContext(ctx, query, a, b).
		Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: participants %d,%d", ErrConversationNotFound, a, b)
		}
		return nil, err
	}
	return c, nil
}

// FindOrCreateConversation returns the conversation for the pair,
// creating it if absent. The insert races safely under concurrent
// first contact: ON CONFLICT DO NOTHING plus the follow-up select
// means every racer converges on the same single row.
func (r *Repository) FindOrCreateConversation(ctx context.Context, identityA, identityB string) (*Conversation, error) {
	a, err := parseIdentity(identityA)
	if err != nil {
		return nil, err
	}
	b, err := parseIdentity(identityB)
	if err != nil {
		return nil, err
	}
	a, b = normalizePair(a, b)

	insert := `INSERT INTO conversations (id, participant_a, participant_b)
               VALUES ($1, $2, $3)
               ON CONFLICT (participant_a, participant_b) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), a, b); err != nil {
		return nil, err
	}

	return r.FindConversationByParticipants(ctx, strconv.Itoa(a), strconv.Itoa(b))
}

// EnsureConversation guarantees a conversation exists for the pair.
// Used when a friend request is accepted, so the pair can chat right
// away; idempotent like FindOrCreateConversation.
func (r *Repository) EnsureConversation(ctx context.Context, userA, userB int) error {
	_, err := r.FindOrCreateConversation(ctx, strconv.Itoa(userA), strconv.Itoa(userB))
	return err
}

// AppendMessage durably appends msg to its conversation. It returns
// only after the row is committed; the assigned id is written back
// into msg.
func (r *Repository) AppendMessage(ctx context.Context, conversationID string, msg *Message) error {
	sender, err := parseIdentity(msg.Sender)
	if err != nil {
		return err
	}

	var fileType sql.NullString
	if msg.FileType != "" {
		fileType = sql.NullString{String: msg.FileType, Valid: true}
	}

	query := `INSERT INTO messages (conversation_id, sender_id, content, message_type, file_type, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id`
	err = r.db.QueryRowContext(ctx, query,
		conversationID, sender, msg.Content, msg.MessageType, fileType, msg.Timestamp,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	msg.ConversationID = conversationID
	return nil
}

// History returns a conversation's messages in append order.
func (r *Repository) History(ctx context.Context, conversationID string) ([]*Message, error) {
	query := `SELECT id, conversation_id, sender_id, content, message_type, COALESCE(file_type, ''), created_at
              FROM messages
              WHERE conversation_id = $1
              ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg := &Message{}
		var sender int
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &sender, &msg.Content, &msg.MessageType, &msg.FileType, &msg.Timestamp); err != nil {
			return nil, err
		}
		msg.Sender = strconv.Itoa(sender)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// IsParticipant reports whether the user belongs to the conversation.
func (r *Repository) IsParticipant(ctx context.Context, conversationID, identity string) (bool, error) {
	c, err := r.FindConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return false, nil
		}
		return false, err
	}
	id, err := parseIdentity(identity)
	if err != nil {
		return false, err
	}
	return c.ParticipantA == id || c.ParticipantB == id, nil
}
