// Package authflow drives the login screen's visible state: the credential
// form, the password-reset form, and the submissions against the identity
// provider. The controller is a plain state machine; the HTTP layer feeds it
// input and renders its Form snapshot, so it stays fully testable with fakes.
package authflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/session"
)

// State enumerates the controller's phases.
type State int

const (
	StateCredentialEntry State = iota
	StateSubmitting
	StatePasswordReset
	StateResetSubmitting
)

// Focus is the declarative focus target the rendering layer interprets after
// a failed submission.
type Focus string

const (
	FocusNone     Focus = ""
	FocusEmail    Focus = "email"
	FocusPassword Focus = "password"
)

// Outcome is the terminal result of a submission.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeDashboard means the session marker is persisted and the client
	// should navigate to the dashboard.
	OutcomeDashboard
)

// Form is the transient per-attempt UI state. It is never persisted
// server-side; each response carries the snapshot back to the client.
type Form struct {
	Email        string `json:"email"`
	Password     string `json:"-"`
	Error        string `json:"error,omitempty"`
	Success      string `json:"success,omitempty"`
	Loading      bool   `json:"loading"`
	ResetMode    bool   `json:"reset_mode"`
	ShowPassword bool   `json:"show_password"`
	Focus        Focus  `json:"focus,omitempty"`
}

// Controller owns the auth form state machine. It is not safe for concurrent
// use; each request/attempt gets its own instance.
type Controller struct {
	provider identity.Provider
	store    session.Store
	ttl      time.Duration
	logger   *logrus.Logger

	state      State
	form       Form
	sessionKey string
	user       *identity.User
}

func New(provider identity.Provider, store session.Store, sessionTTL time.Duration, logger *logrus.Logger) *Controller {
	return &Controller{
		provider: provider,
		store:    store,
		ttl:      sessionTTL,
		logger:   logger,
		state:    StateCredentialEntry,
	}
}

// Form returns the current form snapshot.
func (c *Controller) Form() Form { return c.form }

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// SessionKey returns the marker key persisted by a successful submission.
func (c *Controller) SessionKey() string { return c.sessionKey }

// User returns the account snapshot from a successful submission.
func (c *Controller) User() *identity.User { return c.user }

// SetEmail updates the email field.
func (c *Controller) SetEmail(v string) { c.form.Email = v }

// SetPassword updates the password field.
func (c *Controller) SetPassword(v string) { c.form.Password = v }

// TogglePasswordVisibility flips the password-visibility flag.
func (c *Controller) TogglePasswordVisibility() { c.form.ShowPassword = !c.form.ShowPassword }

// ToggleReset switches between the credential form and the password-reset
// form. Any error or success message is cleared; a toggle while a request is
// in flight is ignored.
func (c *Controller) ToggleReset() {
	if c.form.Loading {
		return
	}
	c.form.ResetMode = !c.form.ResetMode
	c.form.Error = ""
	c.form.Success = ""
	c.form.Focus = FocusNone
	if c.form.ResetMode {
		c.state = StatePasswordReset
	} else {
		c.state = StateCredentialEntry
	}
}

// Submit performs the email/password sign-in. On provider failure the
// message is surfaced verbatim, the fields are left untouched, and focus
// moves to the field the message references. On success the session marker
// is persisted and the fields are cleared.
func (c *Controller) Submit(ctx context.Context) Outcome {
	if c.form.Loading || c.form.ResetMode {
		return OutcomeNone
	}
	c.begin(StateSubmitting)

	u, err := c.provider.SignInWithCredentials(ctx, c.form.Email, c.form.Password)
	if err != nil {
		c.fail(StateCredentialEntry, identity.Message(err), true)
		return OutcomeNone
	}
	return c.establish(ctx, u, "")
}

// SubmitOAuth performs a social sign-in for the given provider using the
// authorization code from the redirect callback. Failure handling matches
// Submit except that no field focus applies.
func (c *Controller) SubmitOAuth(ctx context.Context, provider, code string) Outcome {
	if c.form.Loading {
		return OutcomeNone
	}
	c.begin(StateSubmitting)

	u, err := c.provider.SignInWithOAuth(ctx, provider, code)
	if err != nil {
		c.fail(StateCredentialEntry, identity.Message(err), false)
		return OutcomeNone
	}
	return c.establish(ctx, u, provider)
}

// RequestReset asks the provider to send reset instructions to the form's
// email. An empty email fails locally without any provider call. Both
// outcomes leave the controller in the password-reset view.
func (c *Controller) RequestReset(ctx context.Context) {
	if c.form.Loading {
		return
	}
	if strings.TrimSpace(c.form.Email) == "" {
		c.form.Error = "Please enter your email."
		return
	}
	c.begin(StateResetSubmitting)

	err := c.provider.RequestPasswordReset(ctx, c.form.Email)
	c.form.Loading = false
	c.state = StatePasswordReset
	c.form.ResetMode = true
	if err != nil {
		c.form.Error = identity.Message(err)
		return
	}
	c.form.Success = "Check your email for reset instructions."
}

func (c *Controller) begin(s State) {
	c.state = s
	c.form.Loading = true
	c.form.Error = ""
	c.form.Success = ""
	c.form.Focus = FocusNone
}

func (c *Controller) fail(s State, message string, focus bool) {
	c.form.Loading = false
	c.form.Error = message
	c.state = s
	if !focus {
		return
	}
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "email"):
		c.form.Focus = FocusEmail
	case strings.Contains(lower, "password"):
		c.form.Focus = FocusPassword
	}
}

func (c *Controller) establish(ctx context.Context, u *identity.User, provider string) Outcome {
	key := uuid.NewString()
	rec := session.Record{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.Set(ctx, key, rec, c.ttl); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Error("session marker write failed")
		}
		c.fail(StateCredentialEntry, "could not establish session", false)
		return OutcomeNone
	}
	c.form.Loading = false
	c.form.Email = ""
	c.form.Password = ""
	c.sessionKey = key
	c.user = u
	c.state = StateCredentialEntry
	return OutcomeDashboard
}
