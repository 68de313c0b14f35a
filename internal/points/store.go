package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fika-quiz/backend/internal/models"
	"github.com/jmoiron/sqlx"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ── Earning ─────────────────────────────────────────────

// AddScore appends a score record and credits points in one transaction,
// returning the balance after the credit.
func (s *Store) AddScore(ctx context.Context, userID int64, chapter, score, totalQuestions, earned int) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add score: %w", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.GetContext(ctx, &total,
		`UPDATE users SET fika_points = fika_points + $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING fika_points`,
		userID, earned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit points: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_scores (user_id, chapter, score, total_questions)
		 VALUES ($1, $2, $3, $4)`,
		userID, chapter, score, totalQuestions,
	); err != nil {
		return 0, fmt.Errorf("insert score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add score: %w", err)
	}
	return total, nil
}

// ── Spending ────────────────────────────────────────────

// UnlockModule charges cost and records the module, together with the implicit
// module 1, as unlocked for chapter. The charge is a single conditional
// UPDATE, so concurrent unlocks cannot take the balance below zero.
func (s *Store) UnlockModule(ctx context.Context, userID int64, chapter, module, cost int) (int, models.UnlockMap, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("begin unlock: %w", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.GetContext(ctx, &total,
		`UPDATE users SET fika_points = fika_points - $2, updated_at = NOW()
		 WHERE id = $1 AND fika_points >= $2
		 RETURNING fika_points`,
		userID, cost,
	)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
			return 0, nil, fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return 0, nil, ErrUserNotFound
		}
		return 0, nil, ErrInsufficientPoints
	}
	if err != nil {
		return 0, nil, fmt.Errorf("charge unlock: %w", err)
	}

	for _, m := range uniqueModules(1, module) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO unlocked_modules (user_id, chapter, module) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, chapter, module) DO NOTHING`,
			userID, chapter, m,
		); err != nil {
			return 0, nil, fmt.Errorf("record unlock: %w", err)
		}
	}

	var rows []unlockRow
	if err := tx.SelectContext(ctx, &rows,
		`SELECT chapter, module FROM unlocked_modules WHERE user_id = $1 ORDER BY chapter, module`,
		userID,
	); err != nil {
		return 0, nil, fmt.Errorf("read unlocks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("commit unlock: %w", err)
	}
	return total, buildUnlockMap(rows), nil
}

func uniqueModules(mods ...int) []int {
	var out []int
	seen := map[int]bool{}
	for _, m := range mods {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// ── Reads ───────────────────────────────────────────────

func (s *Store) GetBalance(ctx context.Context, userID int64) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total, `SELECT fika_points FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return total, nil
}

func (s *Store) GetScores(ctx context.Context, userID int64) ([]models.QuizScore, error) {
	scores := []models.QuizScore{}
	if err := s.db.SelectContext(ctx, &scores,
		`SELECT id, chapter, score, total_questions, created_at
		 FROM quiz_scores WHERE user_id = $1
		 ORDER BY id ASC`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("get scores: %w", err)
	}
	return scores, nil
}

func (s *Store) GetUnlocks(ctx context.Context, userID int64) (models.UnlockMap, error) {
	var rows []unlockRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT chapter, module FROM unlocked_modules WHERE user_id = $1 ORDER BY chapter, module`,
		userID,
	); err != nil {
		return nil, fmt.Errorf("get unlocks: %w", err)
	}
	return buildUnlockMap(rows), nil
}

// ── Referrals ───────────────────────────────────────────

func (s *Store) GetReferralCode(ctx context.Context, userID int64) (string, error) {
	var code string
	err := s.db.GetContext(ctx, &code, `SELECT referral_code FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get referral code: %w", err)
	}
	return code, nil
}

func (s *Store) CountReferrals(ctx context.Context, code string) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE referred_by = $1`, code,
	); err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return count, nil
}
