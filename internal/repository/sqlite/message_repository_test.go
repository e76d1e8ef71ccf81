package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"market-board/internal/domain"
	"market-board/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, users repository.UserRepository, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	_, err := users.Create(context.Background(), u)
	require.NoError(t, err)
	return u
}

func setupMessageRepos(t *testing.T) (repository.UserRepository, repository.MessageRepository) {
	t.Helper()
	db := openTestDB(t)
	users := NewUserRepository(db)
	messages := NewMessageRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, messages.Init(context.Background()))
	return users, messages
}

func sendAt(t *testing.T, messages repository.MessageRepository, from, to int64, body string, at time.Time) *domain.Message {
	t.Helper()
	msg := &domain.Message{SenderID: from, RecipientID: to, Body: body, CreatedAt: at}
	_, err := messages.CreateAndMarkRead(context.Background(), msg, at)
	require.NoError(t, err)
	return msg
}

func TestListBetweenAscendingAndSymmetric(t *testing.T) {
	users, messages := setupMessageRepos(t)
	ctx := context.Background()

	u := seedUser(t, users, "u")
	v := seedUser(t, users, "v")
	w := seedUser(t, users, "w")

	t1 := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	sendAt(t, messages, u.ID, v.ID, "hi", t1)
	sendAt(t, messages, v.ID, u.ID, "hey", t2)
	// unrelated traffic must not leak into the thread
	sendAt(t, messages, u.ID, w.ID, "other", t1.Add(30*time.Second))

	thread, err := messages.ListBetween(ctx, u.ID, v.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Equal(t, "hi", thread[0].Body)
	require.Equal(t, "hey", thread[1].Body)
	require.True(t, thread[0].CreatedAt.Before(thread[1].CreatedAt))

	// conversation(a,b) == conversation(b,a)
	mirror, err := messages.ListBetween(ctx, v.ID, u.ID)
	require.NoError(t, err)
	require.Equal(t, thread, mirror)
}

func TestListSentAndReceivedOrdering(t *testing.T) {
	users, messages := setupMessageRepos(t)
	ctx := context.Background()

	u := seedUser(t, users, "u")
	b := seedUser(t, users, "b")
	c := seedUser(t, users, "c")

	base := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	sendAt(t, messages, u.ID, b.ID, "first", base)
	sendAt(t, messages, u.ID, c.ID, "second", base.Add(time.Minute))

	desc, err := messages.ListSent(ctx, u.ID, repository.OrderDesc)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	require.Equal(t, "second", desc[0].Body)
	require.Equal(t, "first", desc[1].Body)

	asc, err := messages.ListSent(ctx, u.ID, repository.OrderAsc)
	require.NoError(t, err)
	require.Equal(t, "first", asc[0].Body)

	received, err := messages.ListReceived(ctx, b.ID, repository.OrderDesc)
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.Equal(t, "first", received[0].Body)
}

func TestCreateAndMarkReadStampsSender(t *testing.T) {
	users, messages := setupMessageRepos(t)
	ctx := context.Background()

	u := seedUser(t, users, "u")
	v := seedUser(t, users, "v")

	readAt := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	sendAt(t, messages, u.ID, v.ID, "hello", readAt)

	sender, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, sender.LastMessageReadTime)
	require.True(t, sender.LastMessageReadTime.Equal(readAt))

	// recipient is untouched
	recipient, err := users.GetByID(ctx, v.ID)
	require.NoError(t, err)
	require.Nil(t, recipient.LastMessageReadTime)
}
