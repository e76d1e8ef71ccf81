package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"market-board/internal/domain"
	"market-board/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	recipient_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	body TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id, created_at DESC);
`

const messageColumns = `id, sender_id, recipient_id, body, created_at`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) CreateAndMarkRead(ctx context.Context, msg *domain.Message, readAt time.Time) (int64, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin send message tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO messages (sender_id, recipient_id, body, created_at)
VALUES (?, ?, ?, ?)`,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE users SET last_message_read_time = ? WHERE id = ?`,
		readAt.UTC(), msg.SenderID,
	); err != nil {
		return 0, fmt.Errorf("stamp read time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit send message tx: %w", err)
	}
	msg.ID = id
	return id, nil
}

func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB int64) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
ORDER BY created_at ASC, id ASC`,
		userA, userB, userB, userA,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return collectMessages(rows)
}

func (r *MessageRepository) ListSent(ctx context.Context, senderID int64, order repository.Order) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE sender_id = ?
ORDER BY created_at `+orderSQL(order)+`, id `+orderSQL(order),
		senderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sent messages: %w", err)
	}
	return collectMessages(rows)
}

func (r *MessageRepository) ListReceived(ctx context.Context, recipientID int64, order repository.Order) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+messageColumns+`
FROM messages
WHERE recipient_id = ?
ORDER BY created_at `+orderSQL(order)+`, id `+orderSQL(order),
		recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list received messages: %w", err)
	}
	return collectMessages(rows)
}

// orderSQL whitelists the ordering keyword so it can be spliced into queries.
func orderSQL(order repository.Order) string {
	if order == repository.OrderDesc {
		return "DESC"
	}
	return "ASC"
}

func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}
