// Package middleware provides request middleware for the MCP server.
//
// Each middleware wraps the next handler in the chain:
//
//	chain := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)
//	handler := chain(baseHandler)
//
// The first middleware passed to Chain runs outermost.
//
// # Available Middleware
//
//   - Recover, RecoverWithLogger: convert panics to internal errors
//   - RequestID: tag each request context with a UUID
//   - Logging: one structured log entry per request
//   - SizeLimit: reject oversized params
//   - RateLimit, RateLimitByClient: fortify token buckets
//   - OTel: OpenTelemetry spans and request metrics
//
// DefaultStack bundles Recover, RequestID and Logging. Stack adds the size
// and rate limits configured in a Limits value.
package middleware
