package models

import "time"

type QuizScore struct {
	ID             int64     `json:"-" db:"id"`
	Chapter        int       `json:"chapter" db:"chapter"`
	Score          int       `json:"score" db:"score"`
	TotalQuestions int       `json:"totalQuestions" db:"total_questions"`
	Date           time.Time `json:"date" db:"created_at"`
}

// UnlockMap maps a chapter number, rendered as a string, to the module
// numbers stored as unlocked for it.
type UnlockMap map[string][]int

// ── Request Types ─────────────────────────────────────────

type SubmitScoreRequest struct {
	Chapter        int `json:"chapter"`
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
}

// ── Response Types ────────────────────────────────────────

type SubmitScoreResponse struct {
	Message        string `json:"message"`
	PointsEarned   int    `json:"pointsEarned"`
	NewTotalPoints int    `json:"newTotalPoints"`
}

type ProgressResponse struct {
	QuizScores      []QuizScore `json:"quizScores"`
	FikaPoints      int         `json:"fikaPoints"`
	UnlockedModules UnlockMap   `json:"unlockedModules"`
}

type UnlockResponse struct {
	Message         string    `json:"message"`
	NewTotalPoints  int       `json:"newTotalPoints"`
	UnlockedModules UnlockMap `json:"unlockedModules"`
}

type ReferralStatsResponse struct {
	ReferralCode   string `json:"referralCode"`
	ReferralCount  int    `json:"referralCount"`
	ReferralPoints int    `json:"referralPoints"`
}
