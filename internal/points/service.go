package points

import (
	"context"
	"errors"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
)

var (
	ErrInsufficientPoints = errors.New("insufficient Fika points")
	ErrInvalidScore       = errors.New("score must be between 0 and totalQuestions")
	ErrInvalidModule      = errors.New("chapter and module must be 1 or greater")
	ErrUserNotFound       = errors.New("user not found")
)

// Ledger is the persistence the service needs; *Store implements it.
type Ledger interface {
	AddScore(ctx context.Context, userID int64, chapter, score, totalQuestions, earned int) (int, error)
	UnlockModule(ctx context.Context, userID int64, chapter, module, cost int) (int, models.UnlockMap, error)
	GetBalance(ctx context.Context, userID int64) (int, error)
	GetScores(ctx context.Context, userID int64) ([]models.QuizScore, error)
	GetUnlocks(ctx context.Context, userID int64) (models.UnlockMap, error)
	GetReferralCode(ctx context.Context, userID int64) (string, error)
	CountReferrals(ctx context.Context, code string) (int, error)
}

type Service struct {
	ledger Ledger
	log    *logger.Logger
}

func NewService(ledger Ledger, log *logger.Logger) *Service {
	return &Service{ledger: ledger, log: log.With("component", "points")}
}

// ── Earning ─────────────────────────────────────────────

// SubmitScore records a finished quiz and credits one point per correct
// answer. Submissions are not deduplicated; chapter follows the same range as
// unlocks.
func (s *Service) SubmitScore(ctx context.Context, userID int64, req models.SubmitScoreRequest) (*models.SubmitScoreResponse, error) {
	if !ValidChapter(req.Chapter) {
		return nil, ErrInvalidModule
	}
	if !ValidScore(req.Score, req.TotalQuestions) {
		return nil, ErrInvalidScore
	}

	earned := PointsForScore(req.Score)
	total, err := s.ledger.AddScore(ctx, userID, req.Chapter, req.Score, req.TotalQuestions, earned)
	if err != nil {
		return nil, err
	}

	s.log.Info("score submitted", "user_id", userID, "chapter", req.Chapter, "score", req.Score, "new_total", total)
	return &models.SubmitScoreResponse{
		Message:        "Score saved successfully",
		PointsEarned:   earned,
		NewTotalPoints: total,
	}, nil
}

// ── Spending ────────────────────────────────────────────

// UnlockModule spends UnlockCost to open module of chapter. It fails with
// ErrInsufficientPoints, leaving state unchanged, when the balance is short.
func (s *Service) UnlockModule(ctx context.Context, userID int64, chapter, module int) (*models.UnlockResponse, error) {
	if !ValidTarget(chapter, module) {
		return nil, ErrInvalidModule
	}

	total, unlocks, err := s.ledger.UnlockModule(ctx, userID, chapter, module, UnlockCost)
	if err != nil {
		return nil, err
	}

	s.log.Info("module unlocked", "user_id", userID, "chapter", chapter, "module", module, "new_total", total)
	return &models.UnlockResponse{
		Message:         "Module unlocked successfully",
		NewTotalPoints:  total,
		UnlockedModules: unlocks,
	}, nil
}

// ── Reads ───────────────────────────────────────────────

func (s *Service) GetProgress(ctx context.Context, userID int64) (*models.ProgressResponse, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	scores, err := s.ledger.GetScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.ledger.GetUnlocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	if scores == nil {
		scores = []models.QuizScore{}
	}
	if unlocks == nil {
		unlocks = models.UnlockMap{}
	}
	return &models.ProgressResponse{
		QuizScores:      scores,
		FikaPoints:      balance,
		UnlockedModules: unlocks,
	}, nil
}

// GetReferralStats counts signups that used the caller's code. The points
// figure is derived from the count on every call; it is not read from the
// balance.
func (s *Service) GetReferralStats(ctx context.Context, userID int64) (*models.ReferralStatsResponse, error) {
	code, err := s.ledger.GetReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.CountReferrals(ctx, code)
	if err != nil {
		return nil, err
	}
	return &models.ReferralStatsResponse{
		ReferralCode:   code,
		ReferralCount:  count,
		ReferralPoints: ReferralPoints(count),
	}, nil
}
