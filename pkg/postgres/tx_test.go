package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeTx implements the parts of pgx.Tx that WithTransaction touches.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTransaction_Commits(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	if err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Fatalf("committed=%v rolledBack=%v, want commit only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTransaction(context.Background(), db, func(pgx.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Fatalf("committed=%v rolledBack=%v, want rollback only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{}}
	defer func() {
		if recover() == nil {
			t.Fatal("expected the panic to propagate")
		}
		if !db.tx.rolledBack {
			t.Fatal("expected rollback after panic")
		}
	}()
	_ = WithTransaction(context.Background(), db, func(pgx.Tx) error { panic("bad row") })
}

func TestWithTransaction_BeginAndCommitErrors(t *testing.T) {
	beginErr := errors.New("pool closed")
	err := WithTransaction(context.Background(), &fakeBeginner{err: beginErr}, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("got %v, want %v", err, beginErr)
	}

	commitErr := errors.New("serialization failure")
	db := &fakeBeginner{tx: &fakeTx{commitErr: commitErr}}
	err = WithTransaction(context.Background(), db, func(pgx.Tx) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("got %v, want %v", err, commitErr)
	}
}
