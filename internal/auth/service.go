package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"progress-service/internal/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SessionRecords seeds and drops the per-session personal best.
type SessionRecords interface {
	OnLogin(ctx context.Context, sessionID string, userID int64, exerciseType string) (int, error)
	Forget(ctx context.Context, sessionID string) error
}

type Service struct {
	users           user.Repository
	records         SessionRecords
	issuer          *TokenIssuer
	defaultExercise string
	logger          *slog.Logger
}

func NewService(users user.Repository, records SessionRecords, issuer *TokenIssuer, defaultExercise string, logger *slog.Logger) *Service {
	return &Service{
		users:           users,
		records:         records,
		issuer:          issuer,
		defaultExercise: defaultExercise,
		logger:          logger,
	}
}

// Login authenticates the user, creating a student account on first login,
// and opens a new session seeded with the durable personal best.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	created := false

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		u, err = s.register(ctx, email, req)
		if err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		return nil, err
	default:
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	sessionID := req.SessionID
	if sessionID == "" || created {
		sessionID = uuid.NewString()
	}

	id := Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		SessionID: sessionID,
	}

	token, err := s.issuer.Issue(id)
	if err != nil {
		return nil, err
	}

	record, err := s.records.OnLogin(ctx, id.SessionID, u.ID, s.defaultExercise)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to seed session record", "user_id", u.ID, "error", err)
	}

	return &LoginResponse{
		AccessToken: token,
		User:        u,
		Record:      record,
		Created:     created,
	}, nil
}

func (s *Service) register(ctx context.Context, email string, req LoginRequest) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &user.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleStudent,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if errors.Is(err, user.ErrEmailExists) {
		// Lost a race with a concurrent first login.
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user created on first login", "user_id", u.ID)
	return u, nil
}

// Logout drops the session's cached state.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.records.Forget(ctx, sessionID)
}

// Authenticate resolves a token to its identity, for handlers outside the
// /api group.
func (s *Service) Authenticate(token string) (Identity, error) {
	return s.issuer.Parse(token)
}
