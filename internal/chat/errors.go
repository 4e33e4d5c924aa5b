package chat

import "errors"

// Error taxonomy for the relay core. Sentinels are matched with
// errors.Is so the session can map each class to its wire reply.
var (
	// ErrInvalidFormat covers frames that are not JSON or do not
	// satisfy the schema of their declared type.
	ErrInvalidFormat = errors.New("invalid message format")

	// ErrUnknownType covers well-formed frames with an unrecognized
	// type tag.
	ErrUnknownType = errors.New("unknown event type")

	// ErrConversationNotFound is returned by the store when neither
	// the id nor the participant pair resolves to a conversation.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrSenderMismatch rejects frames whose senderId differs from
	// the session's authenticated identity.
	ErrSenderMismatch = errors.New("sender does not match authenticated user")
)
