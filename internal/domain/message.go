package domain

import "time"

// Message is a directed edge from sender to recipient, immutable once created.
// The conversation between two users is the union of messages in both
// directions ordered by creation time.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	Body        string
	CreatedAt   time.Time
}
