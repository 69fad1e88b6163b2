package pgledger

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/blockberries/didrpc/types"
)

const dialectPostgres = "postgres"

const (
	colHash        = "hash"
	colNumber      = "number"
	colAPIVersion  = "api_version"
	colAccount     = "account"
	colName        = "name"
	colValue       = "value"
	colValidity    = "validity"
	colCreated     = "created"
	colBlockNumber = "block_number"
	colRemoved     = "removed"
)

// ErrBuildingQueryFailed wraps goqu errors.
var ErrBuildingQueryFailed = errors.New("pgledger: building query failed")

type sqlQuery struct {
	sql  string
	args []any
}

func build(ds *goqu.SelectDataset) (sqlQuery, error) {
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return sqlQuery{}, errors.Join(ErrBuildingQueryFailed, err)
	}
	return sqlQuery{sql: q, args: args}, nil
}

// blockQuery selects number and api_version of the block with the
// given hash.
func (l *Ledger) blockQuery(at types.Hash) (sqlQuery, error) {
	return build(goqu.Dialect(dialectPostgres).
		From(l.blocksTable).
		Select(colNumber, colAPIVersion).
		Where(goqu.C(colHash).Eq(at[:])))
}

// bestQuery selects the hash of the highest block.
func (l *Ledger) bestQuery() (sqlQuery, error) {
	return build(goqu.Dialect(dialectPostgres).
		From(l.blocksTable).
		Select(colHash).
		Order(goqu.C(colNumber).Desc()).
		Limit(1))
}

// attributeQuery selects the newest history row for (account, name)
// at or below block number n.
func (l *Ledger) attributeQuery(account types.AccountID, name []byte, n int64) (sqlQuery, error) {
	if name == nil {
		name = []byte{}
	}
	return build(goqu.Dialect(dialectPostgres).
		From(l.historyTable).
		Select(colValue, colValidity, colCreated, colRemoved).
		Where(
			goqu.C(colAccount).Eq(account[:]),
			goqu.C(colName).Eq(name),
			goqu.C(colBlockNumber).Lte(n),
		).
		Order(goqu.C(colBlockNumber).Desc()).
		Limit(1))
}
