// Package repomanager wires the SQL-backed repositories to a shared handle
// so services can run several of them inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Noureldein28/security-todo/internal/dbx"
	"github.com/Noureldein28/security-todo/internal/server/repositories/records"
	"github.com/Noureldein28/security-todo/internal/server/repositories/refreshtokens"
	"github.com/Noureldein28/security-todo/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given handle, which
// may be the root *sql.DB or a transaction from dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
