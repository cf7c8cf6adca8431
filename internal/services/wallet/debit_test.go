package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastprodman/luxwallet/internal/infra/pgtestutil"
)

func TestDebit_Table(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "rich", 100)
	pgtestutil.SeedAccount(t, db, "poor", 2)
	pgtestutil.SeedAccount(t, db, "empty", 0)

	svc := newTestService(db, &fakeProvider{})

	tests := []struct {
		accountID   string
		cost        int64
		wantBalance int64
		wantErr     error
	}{
		{accountID: "rich", cost: 1, wantBalance: 99},
		{accountID: "rich", cost: 99, wantBalance: 0},
		{accountID: "poor", cost: 3, wantBalance: 2, wantErr: ErrInsufficientFunds},
		{accountID: "poor", cost: 2, wantBalance: 0},
		{accountID: "empty", cost: 1, wantBalance: 0, wantErr: ErrInsufficientFunds},
		{accountID: "ghost", cost: 1, wantErr: ErrAccountNotFound},
	}

	for _, tt := range tests {
		got, err := svc.Debit(t.Context(), tt.accountID, tt.cost)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s/%d: want err %v, got %v", tt.accountID, tt.cost, tt.wantErr, err)
		}
		if tt.wantErr != nil {
			continue
		}
		if got != tt.wantBalance {
			t.Fatalf("%s/%d: returned balance want %d, got %d", tt.accountID, tt.cost, tt.wantBalance, got)
		}
		if stored := pgtestutil.Balance(t, db, tt.accountID); stored != tt.wantBalance {
			t.Fatalf("%s/%d: stored balance want %d, got %d", tt.accountID, tt.cost, tt.wantBalance, stored)
		}
	}

	if b := pgtestutil.Balance(t, db, "poor"); b != 0 {
		t.Fatalf("poor: final balance want 0, got %d", b)
	}
}

// 100 concurrent clicks: exactly min(balance, 100) succeed and the balance
// ends at zero, never below.
func TestDebitClick_ConcurrentNeverNegative(t *testing.T) {
	t.Parallel()

	const clicks = 100

	for _, start := range []int64{1, 50} {
		t.Run(fmt.Sprintf("balance_%d", start), func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			pgtestutil.SeedAccount(t, db, "acc", start)

			svc := newTestService(db, &fakeProvider{})

			var (
				wg       sync.WaitGroup
				ok       atomic.Int32
				declined atomic.Int32
				other    atomic.Int32
			)

			gate := make(chan struct{})

			for range clicks {
				wg.Add(1)

				go func() {
					defer wg.Done()
					<-gate

					ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
					defer cancel()

					_, err := svc.DebitClick(ctx, "acc")

					switch {
					case err == nil:
						ok.Add(1)
					case errors.Is(err, ErrInsufficientFunds):
						declined.Add(1)
					default:
						other.Add(1)
						t.Errorf("unexpected debit error: %v", err)
					}
				}()
			}

			close(gate)
			wg.Wait()

			if int64(ok.Load()) != start || int64(declined.Load()) != clicks-start || other.Load() != 0 {
				t.Fatalf("want %d ok / %d declined, got %d / %d (other %d)",
					start, clicks-start, ok.Load(), declined.Load(), other.Load())
			}

			if b := pgtestutil.Balance(t, db, "acc"); b != 0 {
				t.Fatalf("final balance: want 0, got %d", b)
			}
		})
	}
}

// A row lock held past the lock timeout surfaces as ErrBusy with no change.
func TestDebit_LockTimeoutIsBusy(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedAccount(t, db, "acc", 10)

	cfg := testWalletConfig()
	cfg.LockTimeout = 200 * time.Millisecond
	svc := New(db, &fakeProvider{}, cfg, "eur")

	holder, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin holder: %v", err)
	}
	defer func() { _ = holder.Rollback() }()

	_, err = holder.Exec(`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, "acc")
	if err != nil {
		t.Fatalf("hold lock: %v", err)
	}

	_, err = svc.DebitClick(t.Context(), "acc")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}

	_ = holder.Rollback()

	if b := pgtestutil.Balance(t, db, "acc"); b != 10 {
		t.Fatalf("balance changed: want 10, got %d", b)
	}
}
