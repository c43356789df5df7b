package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	UpdateLastSeen(ctx context.Context, id int64, at time.Time) error
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	Verify(ctx context.Context, token string) (*account.Account, error)
	Resolve(ctx context.Context, accountID int64) (*account.Account, error)
	Touch(ctx context.Context, accountID int64) error
}

// Service turns credentials into tokens and tokens back into active accounts.
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns a token. Unknown email, inactive
// account and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(dto.Email))
	if err != nil {
		return nil, errors.NewInternalError("failed to load account", err)
	}
	if row == nil || !row.IsActive {
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	acc := account.FromDataModel(row)
	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(acc.ID, acc.Role())
	if err != nil {
		return nil, errors.NewInternalError("failed to issue token", err)
	}

	now := time.Now()
	if err := s.repo.UpdateLastSeen(ctx, acc.ID, now); err != nil {
		s.logger.Warn("failed to update last seen", "account_id", acc.ID, "error", err)
	} else {
		acc.LastSeenAt = &now
	}

	s.logger.Info("account logged in", "account_id", acc.ID, "company_id", acc.CompanyID)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      acc.ToProfile(),
	}, nil
}

// Verify maps a bearer token to the active account it names.
func (s *Service) Verify(ctx context.Context, token string) (*account.Account, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		if stderrors.Is(err, errTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrUnauthenticated
	}
	return s.Resolve(ctx, claims.UserID)
}

// Resolve reloads an account so role, department and active flag are current.
func (s *Service) Resolve(ctx context.Context, accountID int64) (*account.Account, error) {
	row, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load account", err)
	}
	if row == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !row.IsActive {
		return nil, errors.ErrAccountInactive
	}
	return account.FromDataModel(row), nil
}

func (s *Service) Touch(ctx context.Context, accountID int64) error {
	return s.repo.UpdateLastSeen(ctx, accountID, time.Now())
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
