package points

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fika-quiz/backend/internal/database"
	"github.com/fika-quiz/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// openTestDB connects to TEST_DATABASE_URL and applies migrations. Tests
// that need it are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := database.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func insertTestUser(t *testing.T, db *sqlx.DB, balance int) int64 {
	t.Helper()
	key := uuid.NewString()

	var id int64
	if err := db.GetContext(context.Background(), &id,
		`INSERT INTO users (google_id, email, name, referral_code, fika_points)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		"store-test-"+key, key+"@example.com", "Store Test", strings.ToUpper(key[:6]), balance,
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestStore_UnlockModuleConcurrent(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	userID := insertTestUser(t, db, 100)
	ctx := context.Background()

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, refused := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(module int) {
			defer wg.Done()
			total, _, err := store.UnlockModule(ctx, userID, 1, module, UnlockCost)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
				if total < 0 {
					t.Errorf("balance went to %d", total)
				}
			case errors.Is(err, ErrInsufficientPoints):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i%5 + 2)
	}
	wg.Wait()

	if succeeded != 10 || refused != attempts-10 {
		t.Errorf("succeeded=%d refused=%d, want 10 and %d", succeeded, refused, attempts-10)
	}
	balance, err := store.GetBalance(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}

	unlocks, err := store.GetUnlocks(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	want := models.UnlockMap{"1": {1, 2, 3, 4, 5, 6}}
	if !reflect.DeepEqual(unlocks, want) {
		t.Errorf("unlocks = %v, want %v", unlocks, want)
	}
}

func TestStore_UnlockModuleRefusals(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	userID := insertTestUser(t, db, 5)
	ctx := context.Background()

	if _, _, err := store.UnlockModule(ctx, userID, 1, 2, UnlockCost); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("short balance: err = %v, want ErrInsufficientPoints", err)
	}
	if _, _, err := store.UnlockModule(ctx, -1, 1, 2, UnlockCost); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}

	balance, _ := store.GetBalance(ctx, userID)
	unlocks, _ := store.GetUnlocks(ctx, userID)
	if balance != 5 || len(unlocks) != 0 {
		t.Errorf("refused unlock changed state: balance=%d unlocks=%v", balance, unlocks)
	}
}

func TestStore_AddScore(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	userID := insertTestUser(t, db, 100)
	ctx := context.Background()

	total, err := store.AddScore(ctx, userID, 2, 7, 10, 7)
	if err != nil {
		t.Fatal(err)
	}
	if total != 107 {
		t.Errorf("total = %d, want 107", total)
	}

	scores, err := store.GetScores(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 || scores[0].Chapter != 2 || scores[0].Score != 7 || scores[0].TotalQuestions != 10 {
		t.Errorf("scores = %+v", scores)
	}

	if _, err := store.AddScore(ctx, -1, 1, 1, 10, 1); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: err = %v, want ErrUserNotFound", err)
	}
}
