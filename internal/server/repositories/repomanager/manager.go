package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/govkeeper/internal/dbx"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/configrec"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/deposits"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/events"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/govkeeper/internal/server/tokenledger"
)

// RepositoryManager vends repositories bound to a DBTX. Binding every
// repository of one engine operation to the same *sql.Tx is what gives the
// operation its all-or-nothing semantics.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Config(db dbx.DBTX) configrec.Repository
	Users(db dbx.DBTX) users.Repository
	Deposits(db dbx.DBTX) deposits.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Events(db dbx.DBTX) events.Repository
	Tokens(db dbx.DBTX) tokenledger.Ledger
}
