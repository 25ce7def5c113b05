package tokenledger

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/govkeeper/internal/common"
)

func newLedgerWithMock(t *testing.T) (*PostgresLedger, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresLedger(db), mock, db
}

const (
	debitQuery  = `(?s)^\s*UPDATE\s+token_accounts\s+SET\s+balance\s*=\s*balance\s*-\s*\$3\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+asset\s*=\s*\$2\s+AND\s+balance\s*>=\s*\$3\s*$`
	creditQuery = `(?s)^\s*INSERT\s+INTO\s+token_accounts\s*\(owner,\s*asset,\s*balance\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(owner,\s*asset\)\s*DO\s+UPDATE\s+SET\s+balance\s*=\s*token_accounts\.balance\s*\+\s*EXCLUDED\.balance\s*$`
)

func TestTransferIn_DebitsOwnerCreditsVault(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	mock.ExpectExec(debitQuery).
		WithArgs("alice", "SRM", uint64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(creditQuery).
		WithArgs(VaultOwner, "SRM", uint64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.TransferIn(context.Background(), AssetSRM, "alice", 100); err != nil {
		t.Fatalf("TransferIn error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestTransferIn_InsufficientBalance(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	// the guard fails before any credit happens
	mock.ExpectExec(debitQuery).
		WithArgs("alice", "SRM", uint64(100)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ledger.TransferIn(context.Background(), AssetSRM, "alice", 100)
	if !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestTransferOut_MovesFromVault(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	mock.ExpectExec(debitQuery).
		WithArgs(VaultOwner, "MSRM", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(creditQuery).
		WithArgs("bob", "MSRM", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ledger.TransferOut(context.Background(), AssetMSRM, "bob", 2); err != nil {
		t.Fatalf("TransferOut error: %v", err)
	}
}

func TestMintAndBurn_UseGSRM(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	mock.ExpectExec(creditQuery).
		WithArgs("alice", "gSRM", uint64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := ledger.Mint(context.Background(), "alice", 500); err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	mock.ExpectExec(debitQuery).
		WithArgs("alice", "gSRM", uint64(200)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := ledger.Burn(context.Background(), "alice", 200); err != nil {
		t.Fatalf("Burn error: %v", err)
	}

	mock.ExpectExec(debitQuery).
		WithArgs("alice", "gSRM", uint64(301)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := ledger.Burn(context.Background(), "alice", 301); !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestCredit_DBError(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	mock.ExpectExec(creditQuery).
		WillReturnError(errors.New("db down"))

	err := ledger.Credit(context.Background(), "alice", AssetSRM, 10)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestBalances(t *testing.T) {
	ledger, mock, db := newLedgerWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+asset,\s*balance\s+FROM\s+token_accounts\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+balance\s*>\s*0`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"asset", "balance"}).
			AddRow("SRM", uint64(100)).
			AddRow("gSRM", uint64(40)))

	got, err := ledger.Balances(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	if len(got) != 2 || got[AssetSRM] != 100 || got[AssetGSRM] != 40 {
		t.Fatalf("unexpected balances: %v", got)
	}
}
