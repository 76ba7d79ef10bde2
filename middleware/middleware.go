package middleware

// DefaultStack returns the middleware every transport runs by default:
// panic recovery, request ID injection and request logging.
func DefaultStack(logger Logger) []Middleware {
	return []Middleware{
		RecoverWithLogger(logger),
		RequestID(),
		Logging(logger),
	}
}

// Limits bounds the requests a server accepts. Zero values disable the
// corresponding middleware.
type Limits struct {
	MaxRequestBytes int64
	Rate            int
	Burst           int
}

// Stack returns DefaultStack followed by LimitStack(logger, limits).
func Stack(logger Logger, limits Limits) []Middleware {
	return append(DefaultStack(logger), LimitStack(logger, limits)...)
}

// LimitStack returns the size and rate limits that are enabled in limits.
// Rate limiting is keyed per client; a zero burst defaults to the rate.
func LimitStack(logger Logger, limits Limits) []Middleware {
	var mws []Middleware
	if limits.MaxRequestBytes > 0 {
		mws = append(mws, SizeLimit(limits.MaxRequestBytes, WithSizeLimitLogger(logger)))
	}
	if limits.Rate > 0 {
		burst := limits.Burst
		if burst <= 0 {
			burst = limits.Rate
		}
		mws = append(mws, RateLimitByClient(limits.Rate, burst, WithRateLimitLogger(logger)))
	}
	return mws
}
