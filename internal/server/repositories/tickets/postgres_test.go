package tickets

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/govkeeper/internal/common"
	"github.com/dmitrijs2005/govkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreateClaim_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+claim_tickets\s*\(id,\s*owner,\s*deposit_account,\s*created_at,\s*claim_delay,\s*gsrm_amount\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*$`

	mock.ExpectExec(q).
		WithArgs("t-1", "alice", "d-1", int64(100), int64(60), uint64(500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ticket := &models.ClaimTicket{
		ID: "t-1", Owner: "alice", DepositAccount: "d-1",
		CreatedAt: 100, ClaimDelay: 60, GSRMAmount: 500,
	}
	if err := repo.CreateClaim(context.Background(), ticket); err != nil {
		t.Fatalf("CreateClaim error: %v", err)
	}
}

func TestGetClaim_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+claim_tickets\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetClaim(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDeleteClaim_SingleUse(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE\s+FROM\s+claim_tickets\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.DeleteClaim(context.Background(), "t-1"); err != nil {
		t.Fatalf("DeleteClaim error: %v", err)
	}

	// second delete of the same ticket finds nothing
	mock.ExpectExec(q).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.DeleteClaim(context.Background(), "t-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetRedeem_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+redeem_tickets\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner", "deposit_account", "redeem_index", "is_msrm", "created_at", "redeem_delay", "amount",
		}).AddRow("r-1", "alice", "d-1", uint64(2), true, int64(100), int64(120), uint64(3)))

	got, err := repo.GetRedeem(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("GetRedeem error: %v", err)
	}
	if got.RedeemIndex != 2 || !got.IsMSRM || got.Amount != 3 {
		t.Fatalf("unexpected ticket: %+v", got)
	}
}

func TestCreateRedeem_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+redeem_tickets`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	ticket := &models.RedeemTicket{ID: "r-1", Owner: "alice", DepositAccount: "d-1"}
	if err := repo.CreateRedeem(context.Background(), ticket); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestListRedeemByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.+\s+FROM\s+redeem_tickets\s+WHERE\s+owner\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*redeem_index`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner", "deposit_account", "redeem_index", "is_msrm", "created_at", "redeem_delay", "amount",
		}).
			AddRow("r-1", "alice", "d-1", uint64(0), false, int64(100), int64(120), uint64(40)).
			AddRow("r-2", "alice", "d-1", uint64(1), false, int64(200), int64(120), uint64(60)))

	got, err := repo.ListRedeemByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListRedeemByOwner error: %v", err)
	}
	if len(got) != 2 || got[1].Amount != 60 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
