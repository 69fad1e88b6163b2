package server

import (
	"context"
	"fmt"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Executor performs the single runtime read of a query.
type Executor struct {
	reader     didrpc.AttributeReader
	versioner  didrpc.APIVersioner // nil if the ledger does not report versions
	minVersion uint32              // 0 = no version check
}

// NewExecutor creates an executor over reader. If minVersion is
// non-zero and reader implements didrpc.APIVersioner, every read is
// preceded by an API version check at the queried block.
func NewExecutor(reader didrpc.AttributeReader, minVersion uint32) *Executor {
	e := &Executor{reader: reader, minVersion: minVersion}
	e.versioner, _ = reader.(didrpc.APIVersioner)
	return e
}

// Execute reads name of account at the given block. A nil record
// with a nil error means no record exists. No retries are attempted.
func (e *Executor) Execute(ctx context.Context, at types.Hash, account types.AccountID, name types.Bytes) (rec *types.Attribute, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%w: %v", didrpc.ErrRuntimePanic, r)
		}
	}()

	if err := e.checkVersion(ctx, at); err != nil {
		return nil, err
	}
	return e.reader.ReadAttribute(ctx, at, account, []byte(name))
}

func (e *Executor) checkVersion(ctx context.Context, at types.Hash) error {
	if e.minVersion == 0 || e.versioner == nil {
		return nil
	}
	v, err := e.versioner.APIVersion(ctx, at)
	if err != nil {
		return fmt.Errorf("%w at %s: %w", didrpc.ErrAPIUnavailable, at, err)
	}
	if v < e.minVersion {
		return fmt.Errorf("%w at %s: version %d, need %d", didrpc.ErrAPIUnavailable, at, v, e.minVersion)
	}
	return nil
}
