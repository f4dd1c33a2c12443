package core

import "errors"

// Session error taxonomy. Connect-time errors (ErrInvalidEndpoint,
// ErrPermissionDenied, ErrConnectionFailed) leave the session
// unconnected. ErrSendFailed and ErrBootstrapFailed preserve the
// session. ErrMicFailed is fatal when raised while enabling the mic and
// non-fatal while disabling it.
var (
	ErrInvalidEndpoint  = errors.New("invalid endpoint or token")
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrConnectionFailed = errors.New("connection failed")
	ErrSendFailed       = errors.New("chat send failed")
	ErrBootstrapFailed  = errors.New("bootstrap send failed")
	ErrMicFailed        = errors.New("microphone failed")
)
