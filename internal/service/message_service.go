package service

import (
	"context"
	"strings"
	"time"

	"market-board/internal/domain"
	"market-board/internal/repository"
)

// ConversationView is the chat page between the current user and one peer:
// the full bidirectional thread oldest-first, plus the recent-chats sidebar.
type ConversationView struct {
	Peer        *domain.User
	Messages    []domain.Message
	RecentChats []domain.User
}

// InboxView is the messages overview: recent correspondents and the raw
// sent/received logs newest-first.
type InboxView struct {
	RecentChats []domain.User
	Sent        []domain.Message
	Received    []domain.Message
}

// MessageService implements conversation retrieval and the recent-chats
// index on top of explicit, ordered repository queries.
type MessageService interface {
	Send(ctx context.Context, sender *domain.User, recipientUsername, body string) (*domain.Message, error)
	Conversation(ctx context.Context, current *domain.User, peerUsername string) (*ConversationView, error)
	Inbox(ctx context.Context, current *domain.User) (*InboxView, error)
}

type messageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) MessageService {
	return &messageService{
		messages: messages,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageService) Send(ctx context.Context, sender *domain.User, recipientUsername, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.NewValidationError("message", "This field is required")
	}

	recipient, err := s.users.GetByUsername(ctx, CanonicalUsername(recipientUsername))
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        body,
	}
	// insert and read-time stamp commit together
	if _, err := s.messages.CreateAndMarkRead(ctx, msg, s.now()); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) Conversation(ctx context.Context, current *domain.User, peerUsername string) (*ConversationView, error) {
	peer, err := s.users.GetByUsername(ctx, CanonicalUsername(peerUsername))
	if err != nil {
		return nil, err
	}

	// viewing the thread marks everything up to now as read
	if err := s.users.SetLastMessageRead(ctx, current.ID, s.now()); err != nil {
		return nil, err
	}

	thread, err := s.messages.ListBetween(ctx, current.ID, peer.ID)
	if err != nil {
		return nil, err
	}

	recent, err := s.recentCorrespondents(ctx, current.ID)
	if err != nil {
		return nil, err
	}

	return &ConversationView{
		Peer:        sanitizeUser(peer),
		Messages:    thread,
		RecentChats: recent,
	}, nil
}

func (s *messageService) Inbox(ctx context.Context, current *domain.User) (*InboxView, error) {
	if err := s.users.SetLastMessageRead(ctx, current.ID, s.now()); err != nil {
		return nil, err
	}

	received, err := s.messages.ListReceived(ctx, current.ID, repository.OrderDesc)
	if err != nil {
		return nil, err
	}
	sent, err := s.messages.ListSent(ctx, current.ID, repository.OrderDesc)
	if err != nil {
		return nil, err
	}

	recent, err := s.resolveCorrespondents(ctx, correspondentSequence(received, sent))
	if err != nil {
		return nil, err
	}

	return &InboxView{
		RecentChats: recent,
		Sent:        sent,
		Received:    received,
	}, nil
}

func (s *messageService) recentCorrespondents(ctx context.Context, userID int64) ([]domain.User, error) {
	received, err := s.messages.ListReceived(ctx, userID, repository.OrderDesc)
	if err != nil {
		return nil, err
	}
	sent, err := s.messages.ListSent(ctx, userID, repository.OrderDesc)
	if err != nil {
		return nil, err
	}
	return s.resolveCorrespondents(ctx, correspondentSequence(received, sent))
}

// correspondentSequence builds the recent-chats ordering: every sender of a
// received message (newest first), then every recipient of a sent message
// (newest first), deduplicated keeping the first occurrence. The two-pass
// order is NOT a global merge by timestamp. See DESIGN.md before changing it.
func correspondentSequence(receivedDesc, sentDesc []domain.Message) []int64 {
	seen := make(map[int64]struct{}, len(receivedDesc)+len(sentDesc))
	var ordered []int64

	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	for _, m := range receivedDesc {
		add(m.SenderID)
	}
	for _, m := range sentDesc {
		add(m.RecipientID)
	}
	return ordered
}

func (s *messageService) resolveCorrespondents(ctx context.Context, ids []int64) ([]domain.User, error) {
	byID, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, *sanitizeUser(u))
		}
	}
	return users, nil
}
