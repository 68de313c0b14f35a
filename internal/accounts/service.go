package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrReferralCodeTaken = errors.New("referral code already in use")
	ErrDuplicateAccount  = errors.New("account already exists for this identity")
	ErrEmailTaken        = errors.New("email already registered to another account")
)

const maxCodeAttempts = 5

type Repository interface {
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, a NewAccount) (*models.User, error)
}

type Service struct {
	repo    Repository
	newCode func() (string, error)
	log     *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, newCode: GenerateReferralCode, log: log.With("component", "accounts")}
}

func (s *Service) GetAccount(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ResolveAccount returns the account bound to identity, creating it on first
// login. The referral code is ignored for existing accounts.
func (s *Service) ResolveAccount(ctx context.Context, identity models.ExternalIdentity, referralCode string) (*models.User, error) {
	u, err := s.repo.FindByGoogleID(ctx, identity.GoogleID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u, err = s.CreateAccount(ctx, identity, referralCode)
	if errors.Is(err, ErrDuplicateAccount) {
		// A concurrent callback for the same identity won the insert.
		return s.repo.FindByGoogleID(ctx, identity.GoogleID)
	}
	return u, err
}

// CreateAccount inserts a new account with a fresh referral code. A non-empty
// referralCode sets referredBy, raises the starting balance and credits the
// referrer.
func (s *Service) CreateAccount(ctx context.Context, identity models.ExternalIdentity, referralCode string) (*models.User, error) {
	referredBy := NormalizeReferralCode(referralCode)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}

		u, err := s.repo.Create(ctx, NewAccount{
			Identity:     identity,
			ReferralCode: code,
			ReferredBy:   referredBy,
		})
		if errors.Is(err, ErrReferralCodeTaken) {
			s.log.Warn("referral code collision, retrying", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("account created", "user_id", u.ID, "referred", referredBy != "", "fika_points", u.FikaPoints)
		return u, nil
	}
	return nil, fmt.Errorf("create account: %w after %d attempts", ErrReferralCodeTaken, maxCodeAttempts)
}
