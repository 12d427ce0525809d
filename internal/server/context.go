package server

import (
	"context"
	"errors"
	"sync"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/instrumentation"
	"github.com/teemow/tasknotes/internal/logging"
	"github.com/teemow/tasknotes/internal/scan"
)

// ErrShutdown is returned by NoteStore once the context has been shut down.
var ErrShutdown = errors.New("server is shutting down")

// StoreFactory opens an authenticated note store.
type StoreFactory func(ctx context.Context, cfg config.Config, metrics *instrumentation.Metrics) (scan.NoteStore, error)

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithStoreFactory replaces the factory used to open the note store.
func WithStoreFactory(f StoreFactory) Option {
	return func(sc *ServerContext) { sc.factory = f }
}

// WithLogger sets the logger handed to scans.
func WithLogger(l logging.Logger) Option {
	return func(sc *ServerContext) { sc.logger = l }
}

// ServerContext holds the state shared by all MCP tool handlers
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.Config
	factory StoreFactory
	logger  logging.Logger

	mu          sync.RWMutex
	store       scan.NoteStore
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	shutdown    bool
}

// NewServerContext creates a new server context. The note store is opened
// lazily on first use so the server starts even without a valid token.
func NewServerContext(ctx context.Context, cfg config.Config, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		factory: DefaultStoreFactory,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// DefaultStoreFactory opens an Evernote session and returns its note store.
func DefaultStoreFactory(ctx context.Context, cfg config.Config, metrics *instrumentation.Metrics) (scan.NoteStore, error) {
	sessionCfg, err := cfg.SessionConfig()
	if err != nil {
		return nil, err
	}
	sessionCfg.Metrics = metrics
	session, err := evernote.NewSession(ctx, sessionCfg)
	if err != nil {
		return nil, err
	}
	return session.NoteStore(), nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the server was started with
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

// Logger returns the logger for scans
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// NoteStore returns the note store, opening the session on first call.
// A failed attempt is not cached; the next call tries again.
func (sc *ServerContext) NoteStore(ctx context.Context) (scan.NoteStore, error) {
	sc.mu.RLock()
	store, shutdown := sc.store, sc.shutdown
	sc.mu.RUnlock()
	if shutdown {
		return nil, ErrShutdown
	}
	if store != nil {
		return store, nil
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, ErrShutdown
	}
	if sc.store != nil {
		return sc.store, nil
	}
	store, err := sc.factory(ctx, sc.cfg, sc.metrics)
	if err != nil {
		return nil, err
	}
	sc.store = store
	return store, nil
}

// HasSession reports whether the note store has been opened.
func (sc *ServerContext) HasSession() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.store != nil
}

// NewScanner returns a scanner over the shared note store using opts.
func (sc *ServerContext) NewScanner(ctx context.Context, opts scan.Options) (*scan.Scanner, error) {
	store, err := sc.NoteStore(ctx)
	if err != nil {
		return nil, err
	}
	return scan.NewScanner(store, opts, sc.logger, sc.Metrics()), nil
}

// SetMetrics sets the metrics recorder
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, which may be nil
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, which may be nil
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.store = nil
	sc.cancel()
	return nil
}
