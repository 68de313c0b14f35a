package questions

import (
	"context"
	"errors"
	"math"

	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/models"
)

var ErrInvalidModule = errors.New("chapter and module must be 1 or greater")

// maxModule is the last module whose offset fits the INT range of the
// questions table. Chapters above math.MaxInt32 cannot be stored either.
const maxModule = math.MaxInt32/models.QuestionsPerModule + 1

// Catalog is the read side of the question store.
type Catalog interface {
	ListChapters(ctx context.Context) ([]int, error)
	ListByChapter(ctx context.Context, chapter, offset, limit int) ([]models.Question, error)
}

// Cache is an optional read-through layer in front of the Catalog.
type Cache interface {
	GetChapters(ctx context.Context) ([]int, bool, error)
	SetChapters(ctx context.Context, chapters []int) error
	GetModule(ctx context.Context, chapter, module int) ([]models.Question, bool, error)
	SetModule(ctx context.Context, chapter, module int, qs []models.Question) error
}

type Service struct {
	catalog Catalog
	cache   Cache
	log     *logger.Logger
}

// NewService wires the catalog. cache may be nil.
func NewService(catalog Catalog, cache Cache, log *logger.Logger) *Service {
	return &Service{catalog: catalog, cache: cache, log: log.With("component", "questions")}
}

// ListChapters returns every chapter number present in the catalog, ascending.
func (s *Service) ListChapters(ctx context.Context) ([]int, error) {
	if s.cache != nil {
		chapters, ok, err := s.cache.GetChapters(ctx)
		if err != nil {
			s.log.Warn("chapter cache read failed", "error", err)
		} else if ok {
			return chapters, nil
		}
	}

	chapters, err := s.catalog.ListChapters(ctx)
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []int{}
	}

	if s.cache != nil {
		if err := s.cache.SetChapters(ctx, chapters); err != nil {
			s.log.Warn("chapter cache write failed", "error", err)
		}
	}
	return chapters, nil
}

// ListQuestions returns the first block of questions of a chapter.
func (s *Service) ListQuestions(ctx context.Context, chapter int) ([]models.Question, error) {
	return s.ListModuleQuestions(ctx, chapter, 1)
}

// ListModuleQuestions returns the positional slice for module. A module past
// the end of the chapter, or a chapter that cannot exist, yields an empty
// slice.
func (s *Service) ListModuleQuestions(ctx context.Context, chapter, module int) ([]models.Question, error) {
	if chapter < 1 || module < 1 {
		return nil, ErrInvalidModule
	}
	if chapter > math.MaxInt32 || module > maxModule {
		return []models.Question{}, nil
	}

	if s.cache != nil {
		qs, ok, err := s.cache.GetModule(ctx, chapter, module)
		if err != nil {
			s.log.Warn("module cache read failed", "chapter", chapter, "module", module, "error", err)
		} else if ok {
			return qs, nil
		}
	}

	offset := (module - 1) * models.QuestionsPerModule
	qs, err := s.catalog.ListByChapter(ctx, chapter, offset, models.QuestionsPerModule)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []models.Question{}
	}

	if s.cache != nil {
		if err := s.cache.SetModule(ctx, chapter, module, qs); err != nil {
			s.log.Warn("module cache write failed", "chapter", chapter, "module", module, "error", err)
		}
	}
	return qs, nil
}
