package database

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	refErr := &pq.Error{Code: "23505", Constraint: "users_referral_code_key"}
	wrapped := fmt.Errorf("insert user: %w", refErr)

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"any constraint", refErr, "", true},
		{"matching constraint through wrap", wrapped, "users_referral_code_key", true},
		{"other constraint", refErr, "users_google_id_key", false},
		{"other pq code", &pq.Error{Code: "23503"}, "", false},
		{"plain error", errors.New("duplicate key"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		if got := IsUniqueViolation(tt.err, tt.constraint); got != tt.want {
			t.Errorf("%s: IsUniqueViolation = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("got %d up and %d down migrations, want a matching non-zero pair", up, down)
	}
}
