package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/favnum/internal/events"
	"github.com/roach88/favnum/internal/ir"
	"github.com/roach88/favnum/internal/store"
)

const tracerName = "github.com/roach88/favnum/internal/registry"

// Store is the transactional record substrate the registry runs on.
// Implemented by *store.Store and *store.Memory.
type Store interface {
	Update(ctx context.Context, fn func(store.Tx) error) error
	View(ctx context.Context, fn func(store.Tx) error) error
}

// Registry executes operations against a Store.
//
// Thread-safety: Registry holds no mutable state of its own; concurrent
// calls are serialized only by the Store's transactions.
type Registry struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithPublisher sets the change event publisher. Defaults to a no-op.
func WithPublisher(p events.Publisher) Option {
	return func(r *Registry) { r.publisher = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) { r.tracer = tp.Tracer(tracerName) }
}

// New creates a Registry over st.
func New(st Store, opts ...Option) *Registry {
	r := &Registry{
		store:     st,
		publisher: events.NoopPublisher{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that is logged with every operation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached to ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestID returns a time-sortable UUIDv7 string.
func NewRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// start opens a span and a request-scoped logger for op.
func (r *Registry) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, *slog.Logger) {
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = NewRequestID()
		ctx = WithRequestID(ctx, reqID)
	}
	ctx, span := r.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attrs...))
	span.SetAttributes(attribute.String("favnum.request_id", reqID))

	logger := r.logger.With("op", op, "request_id", reqID)
	logger.DebugContext(ctx, "operation started")
	return ctx, span, logger
}

// end records the outcome of op on its span and log.
func (r *Registry) end(ctx context.Context, span trace.Span, logger *slog.Logger, err error) {
	defer span.End()

	if err == nil {
		logger.DebugContext(ctx, "operation committed")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var re *ir.RecordError
	if errors.As(err, &re) {
		span.SetAttributes(attribute.String("favnum.error_code", string(re.Code)))
		logger.InfoContext(ctx, "operation rejected", "code", re.Code, "error", err)
		return
	}
	logger.ErrorContext(ctx, "operation failed", "error", err)
}

// publish emits a change event after commit. A publish failure is logged and
// never undoes the committed operation.
func (r *Registry) publish(ctx context.Context, logger *slog.Logger, topic string, event any) {
	if err := r.publisher.Publish(ctx, topic, event); err != nil {
		logger.WarnContext(ctx, "event publish failed", "topic", topic, "error", err)
	}
}

func identityAttr(key string, id ir.Identity) attribute.KeyValue {
	return attribute.String(key, id.String())
}
