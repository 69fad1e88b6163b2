// Package server provides the DID attribute query service: snapshot
// resolution, the runtime read, and translation of the outcome into
// the transport representation and error taxonomy.
package server

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

const (
	tracerName        = "github.com/blockberries/didrpc/server"
	spanReadAttribute = "didrpc.ReadAttribute"
)

// Compile-time interface check.
var _ didrpc.Querier = (*Server)(nil)

// Server composes Resolver, Executor and Translate into the single
// exposed query. It holds no mutable state and is safe for
// concurrent use.
type Server struct {
	resolver *Resolver
	executor *Executor
	logger   *slog.Logger
	tracer   trace.Tracer
	observer Observer
}

// Read outcomes reported to an Observer.
const (
	OutcomePresent = "present"
	OutcomeAbsent  = "absent"
	OutcomeError   = "error"
)

// Observer receives the outcome of every query.
type Observer interface {
	ObserveRead(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveRead(string) {}

// Option configures a Server.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	observer   Observer
	minVersion uint32
}

// WithLogger sets the logger used to report runtime failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTracer sets the tracer used for per-query spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// WithObserver sets the observer notified of each query outcome.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithMinAPIVersion requires the DID runtime API at the queried block
// to be at least v. Only honored if the ledger implements
// didrpc.APIVersioner.
func WithMinAPIVersion(v uint32) Option {
	return func(c *config) { c.minVersion = v }
}

// New creates a Server over the given ledger.
func New(ledger didrpc.Ledger, opts ...Option) *Server {
	cfg := config{
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		resolver: NewResolver(ledger),
		executor: NewExecutor(ledger, cfg.minVersion),
		logger:   cfg.logger,
		tracer:   cfg.tracer,
		observer: cfg.observer,
	}
}

// ReadAttribute returns the attribute name of account as of at.
// See didrpc.Querier for the result contract.
func (s *Server) ReadAttribute(ctx context.Context, account types.AccountID, name types.Bytes, at types.Snapshot) (*types.RPCAttribute, error) {
	hash := s.resolver.Resolve(at)

	ctx, span := s.tracer.Start(ctx, spanReadAttribute, trace.WithAttributes(
		attribute.String("did.account", account.String()),
		attribute.String("did.block", hash.String()),
		attribute.Bool("did.best", at.IsBest()),
	))
	defer span.End()

	rec, err := s.executor.Execute(ctx, hash, account, name)
	out, svcErr := Translate(rec, err)
	if svcErr != nil {
		s.logger.WarnContext(ctx, "attribute read failed",
			slog.String("account", account.String()),
			slog.String("name", name.String()),
			slog.String("block", hash.String()),
			slog.Any("error", err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, svcErr.Message)
		s.observer.ObserveRead(OutcomeError)
		return nil, svcErr
	}

	span.SetAttributes(attribute.Bool("did.found", out != nil))
	if out == nil {
		s.observer.ObserveRead(OutcomeAbsent)
	} else {
		s.observer.ObserveRead(OutcomePresent)
	}
	return out, nil
}

// Close is a no-op for the server.
func (s *Server) Close() error { return nil }
