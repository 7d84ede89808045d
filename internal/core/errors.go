package core

// Error codes for domain errors.
const (
	ErrCodeAuthFailed           = "auth_failed"
	ErrCodeAlreadyAuthenticated = "already_authenticated"
	ErrCodeNotAuthenticated     = "not_authenticated"
	ErrCodeNotInRoom            = "not_in_room"
	ErrCodeRecipientNotFound    = "recipient_not_found"
	ErrCodeRecipientOffline     = "recipient_offline"
	ErrCodeBadRequest           = "bad_request"
	ErrCodePersistence          = "persistence_failed"
)

// Error wraps a code and human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Fatal reports whether the error terminates the connection. Failed
// authentication and protocol violations of the auth handshake close the
// connection immediately; everything else is delivered as an error event.
func (e *Error) Fatal() bool {
	return e.Code == ErrCodeAuthFailed || e.Code == ErrCodeAlreadyAuthenticated
}

func coreError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}
