package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"market-board/internal/domain"
	"market-board/internal/mail"
	"market-board/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterInput is the already shape-validated registration form.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// UpdateAccountInput carries the profile fields a user may change. Avatar is
// the stored image key returned by the image service, empty to keep the
// current one.
type UpdateAccountInput struct {
	Name     string
	Username string
	Email    string
	Bio      string
	Location string
	Contact  string
	Avatar   string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateAccount(ctx context.Context, current *domain.User, in UpdateAccountInput) (*domain.User, error)
	DeleteAccount(ctx context.Context, current *domain.User) error
	AdminDeleteAccount(ctx context.Context, actor *domain.User, username string) error
	TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error
}

type userService struct {
	users  repository.UserRepository
	mailer mail.Mailer
	logger *logrus.Logger
}

func NewUserService(users repository.UserRepository, mailer mail.Mailer, logger *logrus.Logger) UserService {
	if mailer == nil {
		mailer = mail.Disabled{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		users:  users,
		mailer: mailer,
		logger: logger,
	}
}

// CanonicalUsername folds a username to its stored form. All lookups and
// uniqueness checks go through this, so "Alice" and "alice" are one account.
func CanonicalUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := CanonicalUsername(in.Username)
	email := strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if existing, err := s.users.GetByUsername(ctx, username); err == nil && existing != nil {
		fields["username"] = "That username is taken. Please choose a different one"
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		fields["email"] = "That email is taken. Please choose a different one"
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		// unique index is the backstop for races between the check and insert
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, domain.NewValidationError("username", "That username is taken. Please choose a different one")
		}
		return nil, err
	}

	if err := s.mailer.SendWelcome(user.Email, user.Username); err != nil {
		s.logger.Warnf("welcome mail for %s: %v", user.Username, err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = CanonicalUsername(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, CanonicalUsername(username))
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateAccount(ctx context.Context, current *domain.User, in UpdateAccountInput) (*domain.User, error) {
	username := CanonicalUsername(in.Username)
	email := strings.TrimSpace(in.Email)

	fields := map[string]string{}
	if username != current.Username {
		if existing, err := s.users.GetByUsername(ctx, username); err == nil && existing != nil {
			fields["username"] = "That username is taken. Please choose a different one"
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if email != current.Email {
		if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
			fields["email"] = "That email is taken. Please choose a different one"
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	user, err := s.users.GetByID(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Username = username
	user.Email = email
	user.Bio = in.Bio
	user.Location = in.Location
	user.Contact = in.Contact
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) DeleteAccount(ctx context.Context, current *domain.User) error {
	return s.users.Delete(ctx, current.ID)
}

// AdminDeleteAccount removes another user's account. A missing target is a
// silent no-op, not an error.
func (s *userService) AdminDeleteAccount(ctx context.Context, actor *domain.User, username string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	target, err := s.users.GetByUsername(ctx, CanonicalUsername(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.users.Delete(ctx, target.ID)
}

func (s *userService) TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error {
	return s.users.TouchLastSeen(ctx, id, seenAt)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
