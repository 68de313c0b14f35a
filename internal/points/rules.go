package points

import (
	"math"
	"sort"
	"strconv"

	"github.com/fika-quiz/backend/internal/models"
)

const (
	// UnlockCost is charged for every module unlock.
	UnlockCost = 10

	// StartingPoints is the balance of a new account without a referral.
	StartingPoints = 100
	// ReferredSignupBonus is added to a new account that signed up with a code.
	ReferredSignupBonus = 50
	// ReferrerBonus is credited to the owner of the code used at signup.
	ReferrerBonus = 100

	// MaxNumber is the largest chapter, module or score the INT columns hold.
	MaxNumber = math.MaxInt32
)

// PointsForScore awards one point per correct answer.
func PointsForScore(score int) int {
	return score
}

// ValidScore rejects negative scores and, when the quiz size is known, scores
// above it.
func ValidScore(score, totalQuestions int) bool {
	if score < 0 || score > MaxNumber || totalQuestions > MaxNumber {
		return false
	}
	if totalQuestions > 0 && score > totalQuestions {
		return false
	}
	return true
}

// ValidChapter reports whether chapter can name a stored chapter.
func ValidChapter(chapter int) bool {
	return chapter >= 1 && chapter <= MaxNumber
}

// ValidTarget reports whether chapter and module can name a stored module.
func ValidTarget(chapter, module int) bool {
	return ValidChapter(chapter) && module >= 1 && module <= MaxNumber
}

// InitialBalance is the starting balance of an account created with or
// without a referral code.
func InitialBalance(referred bool) int {
	if referred {
		return StartingPoints + ReferredSignupBonus
	}
	return StartingPoints
}

// ReferralPoints is the statistic reported for count referred signups.
func ReferralPoints(count int) int {
	return count * ReferrerBonus
}

// IsUnlocked reports whether module of chapter is open. Module 1 is always
// open, whether or not the chapter has a stored entry.
func IsUnlocked(unlocks models.UnlockMap, chapter, module int) bool {
	if module == 1 {
		return true
	}
	for _, m := range unlocks[strconv.Itoa(chapter)] {
		if m == module {
			return true
		}
	}
	return false
}

type unlockRow struct {
	Chapter int `db:"chapter"`
	Module  int `db:"module"`
}

// buildUnlockMap groups rows by chapter with modules ascending and no
// duplicates.
func buildUnlockMap(rows []unlockRow) models.UnlockMap {
	out := models.UnlockMap{}
	seen := map[unlockRow]bool{}
	for _, r := range rows {
		if seen[r] {
			continue
		}
		seen[r] = true
		key := strconv.Itoa(r.Chapter)
		out[key] = append(out[key], r.Module)
	}
	for _, mods := range out {
		sort.Ints(mods)
	}
	return out
}
