package repository

import (
	"context"
	"time"

	"market-board/internal/domain"
)

// Order selects the timestamp ordering of a message listing.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// MessageRepository exposes the explicit, ordered query methods the
// conversation views are built on.
type MessageRepository interface {
	Init(ctx context.Context) error
	// CreateAndMarkRead inserts the message and stamps the sender's
	// last_message_read_time in a single transaction, so a crash mid-request
	// leaves no partial state.
	CreateAndMarkRead(ctx context.Context, msg *domain.Message, readAt time.Time) (int64, error)
	// ListBetween returns every message exchanged between the two users, in
	// either direction, ordered by creation time ascending.
	ListBetween(ctx context.Context, userA, userB int64) ([]domain.Message, error)
	ListSent(ctx context.Context, senderID int64, order Order) ([]domain.Message, error)
	ListReceived(ctx context.Context, recipientID int64, order Order) ([]domain.Message, error)
}
