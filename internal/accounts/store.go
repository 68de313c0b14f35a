package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fika-quiz/backend/internal/database"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/fika-quiz/backend/internal/points"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, google_id, email, name, picture, referral_code, referred_by, fika_points, created_at, updated_at`

// NewAccount is everything needed to insert a user row.
type NewAccount struct {
	Identity     models.ExternalIdentity
	ReferralCode string
	ReferredBy   string
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by google id: %w", err)
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create credits the referrer, if any, and inserts the account in one
// transaction. A referral code that matches no account still earns the new
// account its signup bonus.
func (s *Store) Create(ctx context.Context, a NewAccount) (*models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback()

	var referredBy *string
	if a.ReferredBy != "" {
		referredBy = &a.ReferredBy
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET fika_points = fika_points + $2, updated_at = NOW()
			 WHERE referral_code = $1`,
			a.ReferredBy, points.ReferrerBonus,
		); err != nil {
			return nil, fmt.Errorf("credit referrer: %w", err)
		}
	}

	var u models.User
	err = tx.GetContext(ctx, &u,
		`INSERT INTO users (google_id, email, name, picture, referral_code, referred_by, fika_points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		a.Identity.GoogleID, a.Identity.Email, a.Identity.Name, a.Identity.Picture,
		a.ReferralCode, referredBy, points.InitialBalance(referredBy != nil),
	)
	switch {
	case database.IsUniqueViolation(err, "users_referral_code_key"):
		return nil, ErrReferralCodeTaken
	case database.IsUniqueViolation(err, "users_google_id_key"):
		return nil, ErrDuplicateAccount
	case database.IsUniqueViolation(err, "users_email_key"):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create user: %w", err)
	}
	return &u, nil
}
