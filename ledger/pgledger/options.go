package pgledger

import (
	"errors"
	"log/slog"
	"time"
)

// Default table names and refresh interval.
const (
	DefaultBlocksTable     = "did_blocks"
	DefaultHistoryTable    = "did_attribute_history"
	DefaultRefreshInterval = 2 * time.Second
)

var (
	ErrEmptyTableName         = errors.New("pgledger: table name must not be empty")
	ErrInvalidRefreshInterval = errors.New("pgledger: refresh interval must be positive")
)

// Option configures a Ledger.
type Option func(*Ledger) error

// WithBlocksTable sets the blocks table name.
func WithBlocksTable(name string) Option {
	return func(l *Ledger) error {
		if name == "" {
			return ErrEmptyTableName
		}
		l.blocksTable = name
		return nil
	}
}

// WithHistoryTable sets the attribute history table name.
func WithHistoryTable(name string) Option {
	return func(l *Ledger) error {
		if name == "" {
			return ErrEmptyTableName
		}
		l.historyTable = name
		return nil
	}
}

// WithRefreshInterval sets how often the best block is reloaded.
func WithRefreshInterval(d time.Duration) Option {
	return func(l *Ledger) error {
		if d <= 0 {
			return ErrInvalidRefreshInterval
		}
		l.refresh = d
		return nil
	}
}

// WithLogger sets the logger for tracker warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) error {
		l.logger = logger
		return nil
	}
}
