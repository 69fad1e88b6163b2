package pgledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// ErrUnknownBlock is returned for a hash the mirror has no block for.
var ErrUnknownBlock = errors.New("pgledger: unknown block")

// ErrOutOfRange is returned when a mirror column holds a value the
// domain type cannot represent.
var ErrOutOfRange = errors.New("pgledger: value out of range")

// ErrNilDatabase is returned by New when db is nil.
var ErrNilDatabase = errors.New("pgledger: database must not be nil")

// Compile-time interface checks.
var (
	_ didrpc.Ledger       = (*Ledger)(nil)
	_ didrpc.APIVersioner = (*Ledger)(nil)
)

// DB is the subset of *pgxpool.Pool the ledger uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger is a read-only didrpc.Ledger over the Postgres mirror.
//
// BestHash is served from memory. Start loads it and keeps it fresh
// until Close.
type Ledger struct {
	db           DB
	blocksTable  string
	historyTable string
	refresh      time.Duration
	logger       *slog.Logger

	mu   sync.RWMutex
	best types.Hash

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates a ledger over db. The caller owns db.
func New(db DB, opts ...Option) (*Ledger, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	l := &Ledger{
		db:           db,
		blocksTable:  DefaultBlocksTable,
		historyTable: DefaultHistoryTable,
		refresh:      DefaultRefreshInterval,
		logger:       slog.New(slog.DiscardHandler),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Start loads the best block and begins refreshing it in the
// background. It fails if the initial load fails.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.refreshBest(ctx); err != nil {
		return fmt.Errorf("pgledger: initial best block: %w", err)
	}
	if l.started.CompareAndSwap(false, true) {
		go l.track()
	}
	return nil
}

// Close stops the tracker. It does not close the DB.
func (l *Ledger) Close() error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	if l.started.Load() {
		<-l.done
	}
	return nil
}

func (l *Ledger) track() {
	defer close(l.done)
	ticker := time.NewTicker(l.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.refresh)
			if err := l.refreshBest(ctx); err != nil {
				l.logger.Warn("best block refresh failed; keeping last known", slog.Any("error", err))
			}
			cancel()
		}
	}
}

func (l *Ledger) refreshBest(ctx context.Context) error {
	q, err := l.bestQuery()
	if err != nil {
		return err
	}
	var raw []byte
	if err := l.db.QueryRow(ctx, q.sql, q.args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: mirror has no blocks", ErrUnknownBlock)
		}
		return err
	}
	h, err := hashFromBytes(raw)
	if err != nil {
		return err
	}

	l.mu.Lock()
	changed := l.best != h
	l.best = h
	l.mu.Unlock()

	if changed {
		l.logger.Debug("best block updated", slog.String("hash", h.String()))
	}
	return nil
}

func (l *Ledger) BestHash() types.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.best
}

// block resolves a hash to its number and API version.
func (l *Ledger) block(ctx context.Context, at types.Hash) (number, version int64, err error) {
	q, err := l.blockQuery(at)
	if err != nil {
		return 0, 0, err
	}
	if err := l.db.QueryRow(ctx, q.sql, q.args...).Scan(&number, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, fmt.Errorf("%w: %s", ErrUnknownBlock, at)
		}
		return 0, 0, fmt.Errorf("pgledger: load block %s: %w", at, err)
	}
	return number, version, nil
}

func (l *Ledger) APIVersion(ctx context.Context, at types.Hash) (uint32, error) {
	_, version, err := l.block(ctx, at)
	if err != nil {
		return 0, err
	}
	if version < 0 || version > math.MaxUint32 {
		return 0, fmt.Errorf("%w: api_version %d at %s", ErrOutOfRange, version, at)
	}
	return uint32(version), nil
}

func (l *Ledger) ReadAttribute(ctx context.Context, at types.Hash, account types.AccountID, name []byte) (*types.Attribute, error) {
	number, _, err := l.block(ctx, at)
	if err != nil {
		return nil, err
	}

	q, err := l.attributeQuery(account, name, number)
	if err != nil {
		return nil, err
	}

	var (
		value             []byte
		validity, created int64
		removed           bool
	)
	err = l.db.QueryRow(ctx, q.sql, q.args...).Scan(&value, &validity, &created, &removed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgledger: load attribute: %w", err)
	}
	if removed {
		return nil, nil
	}
	if validity < 0 || created < 0 {
		return nil, fmt.Errorf("%w: validity %d, created %d", ErrOutOfRange, validity, created)
	}

	return &types.Attribute{
		Name:     append([]byte(nil), name...),
		Value:    value,
		Validity: uint64(validity),
		Created:  uint64(created),
	}, nil
}

func hashFromBytes(raw []byte) (types.Hash, error) {
	var h types.Hash
	if len(raw) != len(h) {
		return h, fmt.Errorf("pgledger: block hash has %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return h, nil
}
