package middlewares

// CtxRequestID is the gin context key holding the request id.
// The string form is shared with handlers.requestIDFrom.
const CtxRequestID = "request_id"
