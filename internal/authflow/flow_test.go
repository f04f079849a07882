package authflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/identity"
	"github.com/pulseboard/pulseboard/internal/session"
)

type fakeProvider struct {
	signInErr   error
	oauthErr    error
	resetErr    error
	user        *identity.User
	signInCalls int
	oauthCalls  int
	resetCalls  int

	// onSignIn runs while the controller is in its loading phase.
	onSignIn func()
}

func (p *fakeProvider) SignInWithCredentials(_ context.Context, _, _ string) (*identity.User, error) {
	p.signInCalls++
	if p.onSignIn != nil {
		p.onSignIn()
	}
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.user, nil
}

func (p *fakeProvider) SignInWithOAuth(_ context.Context, _, _ string) (*identity.User, error) {
	p.oauthCalls++
	if p.oauthErr != nil {
		return nil, p.oauthErr
	}
	return p.user, nil
}

func (p *fakeProvider) RequestPasswordReset(_ context.Context, _ string) error {
	p.resetCalls++
	return p.resetErr
}

func (p *fakeProvider) SignOut(_ context.Context) error { return nil }

type failingStore struct{}

func (failingStore) Get(_ context.Context, _ string) (session.Record, bool, error) {
	return session.Record{}, false, errors.New("store down")
}
func (failingStore) Set(_ context.Context, _ string, _ session.Record, _ time.Duration) error {
	return errors.New("store down")
}
func (failingStore) Remove(_ context.Context, _ string) error { return errors.New("store down") }

func newFlow(p identity.Provider) (*Controller, *session.MemoryStore) {
	store := session.NewMemoryStore()
	return New(p, store, time.Hour, nil), store
}

func TestSubmitFailureKeepsFieldsAndFocusesEmail(t *testing.T) {
	p := &fakeProvider{signInErr: identity.NewError("no account found for this email")}
	c, _ := newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("hunter22")

	out := c.Submit(context.Background())

	require.Equal(t, OutcomeNone, out)
	f := c.Form()
	assert.Equal(t, "no account found for this email", f.Error)
	assert.Equal(t, "ada@example.com", f.Email)
	assert.Equal(t, "hunter22", f.Password)
	assert.Equal(t, FocusEmail, f.Focus)
	assert.False(t, f.Loading)
	assert.Equal(t, StateCredentialEntry, c.State())
}

func TestSubmitFailureFocusesPasswordField(t *testing.T) {
	p := &fakeProvider{signInErr: identity.NewError("Incorrect PASSWORD provided")}
	c, _ := newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("wrong")

	c.Submit(context.Background())

	assert.Equal(t, FocusPassword, c.Form().Focus)
}

func TestSubmitFailureWithoutFieldReferenceLeavesFocusUnset(t *testing.T) {
	p := &fakeProvider{signInErr: identity.NewError("service temporarily unavailable")}
	c, _ := newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("hunter22")

	c.Submit(context.Background())

	assert.Equal(t, FocusNone, c.Form().Focus)
}

func TestSubmitSuccessEstablishesSessionAndClearsFields(t *testing.T) {
	p := &fakeProvider{user: &identity.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}}
	c, store := newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("hunter22")

	out := c.Submit(context.Background())

	require.Equal(t, OutcomeDashboard, out)
	require.NotEmpty(t, c.SessionKey())
	rec, ok, err := store.Get(context.Background(), c.SessionKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "ada@example.com", rec.Email)

	f := c.Form()
	assert.Empty(t, f.Email)
	assert.Empty(t, f.Password)
	assert.Empty(t, f.Error)
	assert.False(t, f.Loading)
}

func TestSubmitWhileLoadingIsIgnored(t *testing.T) {
	p := &fakeProvider{user: &identity.User{ID: "u1"}}
	var c *Controller
	p.onSignIn = func() {
		// Reentrant input during the in-flight request must be dropped.
		assert.Equal(t, OutcomeNone, c.Submit(context.Background()))
		c.ToggleReset()
		assert.False(t, c.Form().ResetMode)
	}
	c, _ = newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("hunter22")

	c.Submit(context.Background())

	assert.Equal(t, 1, p.signInCalls)
}

func TestSubmitInResetModeIsIgnored(t *testing.T) {
	p := &fakeProvider{user: &identity.User{ID: "u1"}}
	c, _ := newFlow(p)
	c.ToggleReset()

	assert.Equal(t, OutcomeNone, c.Submit(context.Background()))
	assert.Zero(t, p.signInCalls)
}

func TestOAuthFailureSurfacesMessageWithoutFocus(t *testing.T) {
	p := &fakeProvider{oauthErr: identity.NewError("email scope was not granted")}
	c, _ := newFlow(p)

	out := c.SubmitOAuth(context.Background(), identity.ProviderGoogle, "code123")

	require.Equal(t, OutcomeNone, out)
	assert.Equal(t, "email scope was not granted", c.Form().Error)
	assert.Equal(t, FocusNone, c.Form().Focus)
}

func TestOAuthSuccessRecordsProvider(t *testing.T) {
	p := &fakeProvider{user: &identity.User{ID: "u2", Email: "g@example.com"}}
	c, store := newFlow(p)

	out := c.SubmitOAuth(context.Background(), identity.ProviderGoogle, "code123")

	require.Equal(t, OutcomeDashboard, out)
	rec, ok, err := store.Get(context.Background(), c.SessionKey())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, identity.ProviderGoogle, rec.Provider)
}

func TestRequestResetEmptyEmailFailsLocally(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newFlow(p)
	c.ToggleReset()
	c.SetEmail("   ")

	c.RequestReset(context.Background())

	assert.Equal(t, "Please enter your email.", c.Form().Error)
	assert.Zero(t, p.resetCalls, "no provider call for an empty email")
	assert.True(t, c.Form().ResetMode)
}

func TestRequestResetSuccessShowsConfirmationAndStaysInResetView(t *testing.T) {
	p := &fakeProvider{}
	c, _ := newFlow(p)
	c.ToggleReset()
	c.SetEmail("ada@example.com")

	c.RequestReset(context.Background())

	f := c.Form()
	assert.Equal(t, "Check your email for reset instructions.", f.Success)
	assert.Empty(t, f.Error)
	assert.True(t, f.ResetMode)
	assert.Equal(t, StatePasswordReset, c.State())
	assert.Equal(t, 1, p.resetCalls)
}

func TestRequestResetProviderErrorSurfacedVerbatim(t *testing.T) {
	p := &fakeProvider{resetErr: identity.NewError("rate limit exceeded, try again later")}
	c, _ := newFlow(p)
	c.ToggleReset()
	c.SetEmail("ada@example.com")

	c.RequestReset(context.Background())

	assert.Equal(t, "rate limit exceeded, try again later", c.Form().Error)
	assert.Empty(t, c.Form().Success)
	assert.True(t, c.Form().ResetMode)
}

func TestToggleResetClearsMessages(t *testing.T) {
	p := &fakeProvider{signInErr: identity.NewError("incorrect password")}
	c, _ := newFlow(p)
	c.SetEmail("ada@example.com")
	c.SetPassword("wrong")
	c.Submit(context.Background())
	require.NotEmpty(t, c.Form().Error)

	c.ToggleReset()

	f := c.Form()
	assert.Empty(t, f.Error)
	assert.Empty(t, f.Success)
	assert.Equal(t, FocusNone, f.Focus)
	assert.True(t, f.ResetMode)
	assert.Equal(t, StatePasswordReset, c.State())

	// Fields survive the toggle so the user does not retype the email.
	assert.Equal(t, "ada@example.com", f.Email)
}

func TestTogglePasswordVisibility(t *testing.T) {
	c, _ := newFlow(&fakeProvider{})
	assert.False(t, c.Form().ShowPassword)
	c.TogglePasswordVisibility()
	assert.True(t, c.Form().ShowPassword)
	c.TogglePasswordVisibility()
	assert.False(t, c.Form().ShowPassword)
}

func TestEstablishFailureReportsSessionError(t *testing.T) {
	p := &fakeProvider{user: &identity.User{ID: "u1"}}
	c := New(p, failingStore{}, time.Hour, nil)
	c.SetEmail("ada@example.com")
	c.SetPassword("hunter22")

	out := c.Submit(context.Background())

	require.Equal(t, OutcomeNone, out)
	assert.Equal(t, "could not establish session", c.Form().Error)
	assert.False(t, c.Form().Loading)
}
