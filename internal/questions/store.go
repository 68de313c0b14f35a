package questions

import (
	"context"
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

// ── Catalog Reads ───────────────────────────────────────

func (s *Store) ListChapters(ctx context.Context) ([]int, error) {
	chapters := []int{}
	if err := s.db.SelectContext(ctx, &chapters,
		`SELECT DISTINCT chapter FROM questions ORDER BY chapter ASC`,
	); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

// ListByChapter returns up to limit questions of a chapter starting at offset,
// in insertion order.
func (s *Store) ListByChapter(ctx context.Context, chapter, offset, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	if err := s.db.SelectContext(ctx, &questions,
		`SELECT id, chapter, question, option_a, option_b, option_c, option_d, answer
		 FROM questions
		 WHERE chapter = $1
		 ORDER BY id ASC
		 OFFSET $2 LIMIT $3`,
		chapter, offset, limit,
	); err != nil {
		return nil, fmt.Errorf("list questions for chapter %d: %w", chapter, err)
	}
	return questions, nil
}

// ── Catalog Writes (seeding only) ───────────────────────

// ReplaceChapters inserts questions in file order. When replace is set, every
// chapter present in the input is cleared first, inside the same transaction.
func (s *Store) ReplaceChapters(ctx context.Context, questions []models.Question, replace bool) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if replace {
		seen := map[int]bool{}
		for _, q := range questions {
			if seen[q.Chapter] {
				continue
			}
			seen[q.Chapter] = true
			if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE chapter = $1`, q.Chapter); err != nil {
				return 0, fmt.Errorf("clear chapter %d: %w", q.Chapter, err)
			}
		}
	}

	for i, q := range questions {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO questions (chapter, question, option_a, option_b, option_c, option_d, answer)
			 VALUES (:chapter, :question, :option_a, :option_b, :option_c, :option_d, :answer)`,
			q,
		); err != nil {
			return 0, fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(questions), nil
}
