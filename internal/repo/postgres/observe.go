package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/geocoder89/taskhub/internal/repo/postgres"

const pgUniqueViolation = "23505"

// observer wraps every logical repository operation with a span and the DB
// latency/error metrics. A nil prom disables metrics only.
type observer struct {
	prom   *observability.Prom
	tracer trace.Tracer
}

func newObserver(prom *observability.Prom) observer {
	return observer{
		prom:   prom,
		tracer: otel.Tracer(tracerName),
	}
}

func (o observer) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
		),
	)
	defer span.End()

	run := func() error { return fn(ctx) }

	var err error
	if o.prom != nil {
		err = o.prom.ObserveDB(op, run)
	} else {
		err = run()
	}

	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return false
}

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
