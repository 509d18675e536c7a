package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.user_id"
	CtxUser      = "auth.user"
)
