package token_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/repo/token"
)

func newRepo(t *testing.T, path, slot string) *token.SQLiteTokenRepository {
	t.Helper()

	repo, err := token.NewSQLiteTokenRepository(token.SQLiteTokenRepositoryConfig{
		DatabasePath: path,
		Slot:         slot,
	})
	if err != nil {
		t.Fatalf("NewSQLiteTokenRepository() error = %v", err)
	}

	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLiteTokenRepository_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "nested", "tokens.db"), "default")

	if _, ok, err := repo.GetToken(ctx); err != nil || ok {
		t.Fatalf("GetToken() on empty slot = %v, %v; want false, nil", ok, err)
	}

	if err := repo.StoreToken(ctx, "abc"); err != nil {
		t.Fatalf("StoreToken() error = %v", err)
	}

	if err := repo.StoreToken(ctx, "def"); err != nil {
		t.Fatalf("StoreToken() overwrite error = %v", err)
	}

	got, ok, err := repo.GetToken(ctx)
	if err != nil || !ok || got != "def" {
		t.Fatalf("GetToken() = %q, %v, %v; want def, true, nil", got, ok, err)
	}

	if err := repo.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}

	if err := repo.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken() on empty slot error = %v", err)
	}

	if _, ok, _ := repo.GetToken(ctx); ok {
		t.Error("token still present after ClearToken()")
	}
}

func TestSQLiteTokenRepository_StoreEmptyClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "tokens.db"), "")

	if err := repo.StoreToken(ctx, "abc"); err != nil {
		t.Fatal(err)
	}

	if err := repo.StoreToken(ctx, ""); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := repo.GetToken(ctx); ok {
		t.Error("storing an empty token should clear the slot")
	}
}

func TestSQLiteTokenRepository_PersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.db")

	first, err := token.SQLiteTokenRepositoryFactory(token.SQLiteTokenRepositoryConfig{DatabasePath: path, Slot: "cli"})()
	if err != nil {
		t.Fatal(err)
	}

	if err := first.StoreToken(ctx, "persisted"); err != nil {
		t.Fatal(err)
	}

	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := newRepo(t, path, "cli")
	if got, ok, err := second.GetToken(ctx); err != nil || !ok || got != "persisted" {
		t.Errorf("GetToken() = %q, %v, %v; want persisted", got, ok, err)
	}

	other := newRepo(t, path, "shell")
	if _, ok, _ := other.GetToken(ctx); ok {
		t.Error("slots must not share tokens")
	}
}

func TestSQLiteTokenRepository_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepo(t, filepath.Join(t.TempDir(), "tokens.db"), "default")

	var wg sync.WaitGroup

	for i := range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			var err error
			if i%2 == 0 {
				err = repo.StoreToken(ctx, "tok")
			} else {
				err = repo.ClearToken(ctx)
			}

			if err != nil {
				t.Errorf("write %d: %v", i, err)
			}
		}()
	}

	wg.Wait()
}

func TestSQLiteTokenRepository_NotADatabase(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, bytes.Repeat([]byte("not a database "), 256), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := token.NewSQLiteTokenRepository(token.SQLiteTokenRepositoryConfig{DatabasePath: path, Slot: "default"})
	if !errors.Is(err, domain.ErrTokenStoreUnavailable) {
		t.Errorf("error = %v, want ErrTokenStoreUnavailable", err)
	}
}
