// Package identity abstracts the service performing credential verification,
// OAuth sign-in and password-reset dispatch. Callers never depend on the
// concrete backend; test doubles implement Provider directly.
package identity

import "context"

// User is the opaque account snapshot a successful sign-in yields.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Error is a provider-reported failure. Message is human-readable and is
// surfaced to the user verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError builds a provider error with the given user-facing message.
func NewError(message string) *Error { return &Error{Message: message} }

// Message returns the user-facing text for any error coming out of a
// Provider call.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if pe, ok := err.(*Error); ok {
		return pe.Message
	}
	return err.Error()
}

// Provider is the identity service contract.
//
// SignInWithOAuth receives the provider name (see OAuth provider constants)
// and the authorization code obtained from the provider's redirect callback.
// RequestPasswordReset reports success for unknown addresses as well, so the
// endpoint cannot be used to enumerate accounts.
type Provider interface {
	SignInWithCredentials(ctx context.Context, email, password string) (*User, error)
	SignInWithOAuth(ctx context.Context, provider, code string) (*User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}

// Supported OAuth provider names.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)
