package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/luxwallet/internal/infra/pgtestutil"
	"github.com/fastprodman/luxwallet/internal/infra/pgutils"
	"github.com/fastprodman/luxwallet/internal/repos/accounts"
)

func TestAccounts_LockAndGetBalance_Table(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "zero", 0)
	pgtestutil.SeedAccount(t, db, "positive", 12345)

	repo := New(db)

	tests := []struct {
		accountID   string
		wantBalance int64
		wantErr     error
	}{
		{accountID: "zero", wantBalance: 0},
		{accountID: "positive", wantBalance: 12345},
		{accountID: "ghost", wantErr: accounts.ErrAccountNotFound},
	}

	for _, tt := range tests {
		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			cancel()
			t.Fatalf("begin tx: %v", err)
		}

		bal, err := repo.LockAndGetBalance(ctx, tx, tt.accountID)
		_ = tx.Rollback()
		cancel()

		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: unexpected error: got %v, want %v", tt.accountID, err, tt.wantErr)
		}
		if bal != tt.wantBalance {
			t.Fatalf("%s: balance mismatch: want %d, got %d", tt.accountID, tt.wantBalance, bal)
		}
	}
}

// A second FOR UPDATE on the same row blocks until the first tx commits.
func TestAccounts_LockAndGetBalance_LocksRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "acc", 200)

	repo := New(db)

	ctx1, cancel1 := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel1()

	tx1, err := db.BeginTx(ctx1, nil)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = repo.LockAndGetBalance(ctx1, tx1, "acc")
	if err != nil {
		t.Fatalf("tx1 lock/get: %v", err)
	}

	startedCh := make(chan struct{})
	resultCh := make(chan error, 1)
	var locked time.Time

	go func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()

		close(startedCh)

		resultCh <- pgutils.WithTx(ctx2, db, func(tx2 *sql.Tx) error {
			_, e := repo.LockAndGetBalance(ctx2, tx2, "acc")
			locked = time.Now()
			return e
		})
	}()

	<-startedCh
	time.Sleep(200 * time.Millisecond)

	released := time.Now()

	err = tx1.Commit()
	if err != nil {
		t.Fatalf("commit tx1: %v", err)
	}

	select {
	case e := <-resultCh:
		if e != nil {
			t.Fatalf("tx2 error: %v", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for tx2 to complete after tx1 commit")
	}

	if locked.Before(released) {
		t.Fatalf("tx2 acquired the lock before tx1 released it")
	}
}

// With lock_timeout set, a blocked lock attempt fails fast with a retryable error.
func TestAccounts_LockAndGetBalance_LockTimeout(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "acc", 200)

	repo := New(db)
	ctx := t.Context()

	tx1, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = repo.LockAndGetBalance(ctx, tx1, "acc")
	if err != nil {
		t.Fatalf("tx1 lock/get: %v", err)
	}

	start := time.Now()

	err = pgutils.WithLockTimeout(ctx, db, 100*time.Millisecond, func(tx2 *sql.Tx) error {
		_, e := repo.LockAndGetBalance(ctx, tx2, "acc")
		return e
	})
	if !pgutils.IsRetryable(err) {
		t.Fatalf("want retryable lock timeout error, got %v", err)
	}
	if waited := time.Since(start); waited > 3*time.Second {
		t.Fatalf("lock attempt blocked for %v", waited)
	}
}
