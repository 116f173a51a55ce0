package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every CoreTask instrument.
const MeterName = "github.com/HeorhiiKortunov/CoreTask"

// Meter returns the meter of the global provider.
func Meter() metric.Meter {
	return otel.Meter(MeterName)
}

// ServerMetrics holds metric instruments for HTTP server telemetry.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorCounter    metric.Int64Counter
}

// NewServerMetrics creates the HTTP instruments on meter.
func NewServerMetrics(meter metric.Meter) (*ServerMetrics, error) {
	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// Buckets: 5ms .. 5s
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.Int(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)
	if status >= 500 {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// DatabaseMetrics holds metric instruments for database operations.
type DatabaseMetrics struct {
	QueryCounter  metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
}

// NewDatabaseMetrics creates metric instruments for database telemetry.
func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	queryCounter, err := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000),
	)
	if err != nil {
		return nil, err
	}

	queryErrors, err := meter.Int64Counter(
		"db.query.error.count",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		QueryCounter:  queryCounter,
		QueryDuration: queryDuration,
		QueryErrors:   queryErrors,
	}, nil
}

// RecordQuery records a database query with operation type and duration.
func (d *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String(AttrDBOperation, operation), // SELECT, INSERT, UPDATE, DELETE
	)

	d.QueryCounter.Add(ctx, 1, attrs)
	d.QueryDuration.Record(ctx, float64(duration)/float64(time.Millisecond), attrs)
	if err != nil {
		d.QueryErrors.Add(ctx, 1, attrs)
	}
}

// AuthMetrics counts login attempts, rejected tokens and gate denials.
type AuthMetrics struct {
	LoginAttempts   metric.Int64Counter
	TokenRejections metric.Int64Counter
	GateDenials     metric.Int64Counter
}

// NewAuthMetrics creates metric instruments for authentication telemetry.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	loginAttempts, err := meter.Int64Counter(
		"coretask.auth.login.attempts",
		metric.WithDescription("Login attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	tokenRejections, err := meter.Int64Counter(
		"coretask.auth.token.rejections",
		metric.WithDescription("Bearer tokens that failed verification or conversion"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	gateDenials, err := meter.Int64Counter(
		"coretask.auth.gate.denials",
		metric.WithDescription("Requests rejected by the role gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		LoginAttempts:   loginAttempts,
		TokenRejections: tokenRejections,
		GateDenials:     gateDenials,
	}, nil
}

// RecordLogin records one login attempt.
func (a *AuthMetrics) RecordLogin(ctx context.Context, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	a.LoginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrResult, result)))
}

// RecordTokenRejection records a presented token that did not resolve to a
// principal.
func (a *AuthMetrics) RecordTokenRejection(ctx context.Context) {
	a.TokenRejections.Add(ctx, 1)
}

// RecordGateDenial records a request stopped by the role gate. reason is
// "unauthenticated" or "forbidden".
func (a *AuthMetrics) RecordGateDenial(ctx context.Context, reason string) {
	a.GateDenials.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

// CacheMetrics records tenant cache activity.
type CacheMetrics struct {
	Lookups   metric.Int64Counter
	Evictions metric.Int64Counter
}

// NewCacheMetrics creates the cache instruments on meter.
func NewCacheMetrics(meter metric.Meter) (*CacheMetrics, error) {
	lookups, err := meter.Int64Counter(
		"coretask.cache.lookups",
		metric.WithDescription("Cache lookups by kind and result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"coretask.cache.evictions",
		metric.WithDescription("Cache evictions by kind and scope"),
		metric.WithUnit("{eviction}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{Lookups: lookups, Evictions: evictions}, nil
}

// RecordLookup records a cache hit or miss.
func (c *CacheMetrics) RecordLookup(ctx context.Context, kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.Lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCacheKind, kind),
		attribute.String(AttrResult, result),
	))
}

// RecordEviction records the eviction of one entry, or of a whole kind when
// broad is set.
func (c *CacheMetrics) RecordEviction(ctx context.Context, kind string, broad bool) {
	scope := "entry"
	if broad {
		scope = "kind"
	}
	c.Evictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCacheKind, kind),
		attribute.String(AttrCacheScope, scope),
	))
}

// Common metric attribute keys
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrDBOperation = "db.operation"

	AttrResult = "result"
	AttrReason = "reason"

	AttrCacheKind  = "kind"
	AttrCacheScope = "scope"
)
