package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"market-board/internal/domain"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))

	u := &domain.User{
		Name:         "Alice A",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}
	id, err := users.Create(ctx, u)
	require.NoError(t, err)
	require.Positive(t, id)
	require.Equal(t, domain.RoleUser, u.Role)

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, id, byName.ID)

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)

	_, err = users.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserUniqueConstraints(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))

	seedUser(t, users, "alice")

	_, err := users.Create(ctx, &domain.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, err = users.Create(ctx, &domain.User{
		Username:     "bob",
		Email:        "alice@example.com",
		PasswordHash: "x",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestUserRoleAndHeartbeat(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))

	u := seedUser(t, users, "harun")

	require.NoError(t, users.SetRole(ctx, "harun", domain.RoleAdmin))
	seenAt := time.Date(2023, 6, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, users.TouchLastSeen(ctx, u.ID, seenAt))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.IsAdmin())
	require.True(t, got.LastSeen.Equal(seenAt))
}

func TestDeleteUserCascades(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	for _, init := range []func(context.Context) error{users.Init, posts.Init, comments.Init, messages.Init} {
		require.NoError(t, init(ctx))
	}

	owner := seedUser(t, users, "owner")
	peer := seedUser(t, users, "peer")

	post := &domain.Post{AuthorID: owner.ID, Content: "for sale"}
	_, err := posts.Create(ctx, post)
	require.NoError(t, err)

	_, err = comments.Create(ctx, &domain.Comment{PostID: post.ID, AuthorID: peer.ID, Body: "interested"})
	require.NoError(t, err)

	sendAt(t, messages, owner.ID, peer.ID, "still available", time.Now().UTC())
	sendAt(t, messages, peer.ID, owner.ID, "yes", time.Now().UTC())

	require.NoError(t, users.Delete(ctx, owner.ID))

	_, err = posts.Get(ctx, post.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	left, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, left)

	sent, err := messages.ListSent(ctx, owner.ID, "ASC")
	require.NoError(t, err)
	require.Empty(t, sent)

	received, err := messages.ListReceived(ctx, peer.ID, "ASC")
	require.NoError(t, err)
	require.Empty(t, received)

	// deleting again reports not found
	require.ErrorIs(t, users.Delete(ctx, owner.ID), domain.ErrNotFound)
}
