package webflow

import "errors"

// ErrorKind clasifica los fallos terminales de un intento.
type ErrorKind string

const (
	KindAccessDenied        ErrorKind = "access_denied"
	KindProviderError       ErrorKind = "provider_error"
	KindInvalidState        ErrorKind = "invalid_state"
	KindInvalidAuthorizeURL ErrorKind = "invalid_authorize_url"
	KindLaunchFailed        ErrorKind = "launch_failed"
)

// AuthError es el error terminal de un intento. El mensaje es apto para mostrar
// al usuario; el detalle técnico va en Err.
type AuthError struct {
	Kind        ErrorKind
	Description string
	Err         error
}

func (e *AuthError) Error() string {
	msg := string(e.Kind)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matchea por Kind, así errors.Is(err, ErrAccessDenied) funciona con
// cualquier descripción.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

var (
	ErrAccessDenied        = &AuthError{Kind: KindAccessDenied}
	ErrProviderError       = &AuthError{Kind: KindProviderError}
	ErrInvalidState        = &AuthError{Kind: KindInvalidState}
	ErrInvalidAuthorizeURL = &AuthError{Kind: KindInvalidAuthorizeURL}
	ErrLaunchFailed        = &AuthError{Kind: KindLaunchFailed}
)

// Errores de uso del Controller.
var (
	ErrNotStarted        = errors.New("webflow: authorize called before start")
	ErrAttemptInProgress = errors.New("webflow: attempt already started; call Reset first")
	ErrNoLauncher        = errors.New("webflow: no launcher configured")
)

func newAuthError(kind ErrorKind, desc string, err error) *AuthError {
	return &AuthError{Kind: kind, Description: desc, Err: err}
}

// KindOf retorna el Kind de err, o "" si no es un AuthError.
func KindOf(err error) ErrorKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func (k ErrorKind) String() string { return string(k) }
