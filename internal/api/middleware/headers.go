package middleware

// Headers this API reads or writes beyond the standard ones.
const (
	headerRequestID     = "X-Request-ID"
	headerReportArchive = "X-Report-Archive"
	headerRetryAfter    = "Retry-After"
)
