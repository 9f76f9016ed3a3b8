// Package backend provides the Dentlink API server.

// This package contains the main application entry points. The actual API
// implementation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/feed: Home feed aggregation and ranking
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (rate limiting, caching, metrics)
// - internal/cache: Redis client for caching and rate limiting
// - internal/metrics: Prometheus metrics
// - internal/telemetry: OpenTelemetry tracing
// - internal/seed: Development and test data seeding
package backend
