package protocol

import "context"

// requestMetaKey is the context key for request metadata.
type requestMetaKey struct{}

// Well-known request metadata keys.
const (
	MetaRemoteAddr = "remote_addr"
	MetaTransport  = "transport"
)

// RequestMeta holds transport-level facts about a request, such as the
// peer address of a websocket connection.
type RequestMeta map[string]string

// ContextWithRequestMeta returns a new context with the request metadata attached.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the request metadata from the context, or nil.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return meta
	}
	return nil
}

// GetRequestMeta returns a single metadata value, or "" if absent.
func GetRequestMeta(ctx context.Context, key string) string {
	return RequestMetaFromContext(ctx)[key]
}

// SetRequestMeta returns a context carrying a copy of the current metadata
// with key set to value. The metadata already in ctx is never mutated.
func SetRequestMeta(ctx context.Context, key, value string) context.Context {
	meta := RequestMetaFromContext(ctx)
	next := make(RequestMeta, len(meta)+1)
	for k, v := range meta {
		next[k] = v
	}
	next[key] = value
	return ContextWithRequestMeta(ctx, next)
}
