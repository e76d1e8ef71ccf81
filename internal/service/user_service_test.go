package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"market-board/internal/domain"
)

type recordingMailer struct {
	sentTo []string
}

func (m *recordingMailer) SendWelcome(to, _ string) error {
	m.sentTo = append(m.sentTo, to)
	return nil
}

func TestRegisterFoldsUsernameAndMails(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &recordingMailer{}
	svc := NewUserService(repo, mailer, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice A",
		Username: "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Empty(t, user.PasswordHash)
	require.Equal(t, []string{"alice@example.com"}, mailer.sentTo)
}

func TestRegisterRejectsCaseInsensitiveDuplicate(t *testing.T) {
	existing := testUser(1, "alice")
	repo := newFakeUserRepo(existing)
	svc := NewUserService(repo, nil, nil)

	// "Alice" differs from the stored "alice" only by case
	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "A",
		Username: "Alice",
		Email:    "fresh@example.com",
		Password: "secret-password",
	})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "username")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := testUser(1, "alice")
	repo := newFakeUserRepo(existing)
	svc := NewUserService(repo, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "B",
		Username: "bob",
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "email")
	require.NotContains(t, ve.Fields, "username")
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	existing := testUser(1, "alice")
	existing.PasswordHash = string(hash)
	repo := newFakeUserRepo(existing)
	svc := NewUserService(repo, nil, nil)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	require.Equal(t, existing.ID, user.ID)
	require.Empty(t, user.PasswordHash)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAccountUniquenessExcludesSelf(t *testing.T) {
	alice := testUser(1, "alice")
	bob := testUser(2, "bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserService(repo, nil, nil)
	ctx := context.Background()

	// keeping your own username is always allowed
	updated, err := svc.UpdateAccount(ctx, alice, UpdateAccountInput{
		Name:     "Alice",
		Username: "Alice",
		Email:    alice.Email,
		Location: "here",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, "here", updated.Location)

	// taking someone else's is not
	_, err = svc.UpdateAccount(ctx, alice, UpdateAccountInput{
		Username: "bob",
		Email:    alice.Email,
	})
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "username")
}

func TestAdminDeleteAccount(t *testing.T) {
	admin := testUser(1, "harun")
	admin.Role = domain.RoleAdmin
	victim := testUser(2, "spam")
	plain := testUser(3, "pleb")
	repo := newFakeUserRepo(admin, victim, plain)
	svc := NewUserService(repo, nil, nil)
	ctx := context.Background()

	require.ErrorIs(t, svc.AdminDeleteAccount(ctx, plain, "spam"), domain.ErrForbidden)
	require.Contains(t, repo.users, victim.ID)

	require.NoError(t, svc.AdminDeleteAccount(ctx, admin, "SPAM"))
	require.NotContains(t, repo.users, victim.ID)

	// missing target is a silent no-op
	require.NoError(t, svc.AdminDeleteAccount(ctx, admin, "ghost"))
}
