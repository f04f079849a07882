package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/domain/entity"
	"github.com/pulseboard/pulseboard/pkg/helpers"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
	upserts int
}

func (r *fakeUserRepo) Create(_ context.Context, _ *entity.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, _ *entity.User) error { return nil }

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _, _ string) error { return nil }

func (r *fakeUserRepo) UpsertOAuth(_ context.Context, u *entity.User) error {
	r.upserts++
	u.ID = "oauth-1"
	return nil
}

func seededRepo(t *testing.T) *fakeUserRepo {
	t.Helper()
	hash, err := helpers.HashPassword("hunter22")
	require.NoError(t, err)
	return &fakeUserRepo{byEmail: map[string]*entity.User{
		"ada@example.com":    {ID: "u1", Email: "ada@example.com", Name: "Ada", Password: hash},
		"social@example.com": {ID: "u2", Email: "social@example.com", Name: "Sol", Provider: ProviderGoogle},
	}}
}

func TestSignInUnknownEmail(t *testing.T) {
	p := &LocalProvider{Repo: seededRepo(t)}

	_, err := p.SignInWithCredentials(context.Background(), "nobody@example.com", "x")

	require.Error(t, err)
	assert.Equal(t, "no account found for this email", Message(err))
}

func TestSignInOAuthOnlyAccount(t *testing.T) {
	p := &LocalProvider{Repo: seededRepo(t)}

	_, err := p.SignInWithCredentials(context.Background(), "social@example.com", "x")

	require.Error(t, err)
	assert.Equal(t, "this email is registered through a social login", Message(err))
}

func TestSignInWrongPassword(t *testing.T) {
	p := &LocalProvider{Repo: seededRepo(t)}

	_, err := p.SignInWithCredentials(context.Background(), "ada@example.com", "wrong")

	require.Error(t, err)
	assert.Equal(t, "incorrect password", Message(err))
}

func TestSignInSuccess(t *testing.T) {
	p := &LocalProvider{Repo: seededRepo(t)}

	u, err := p.SignInWithCredentials(context.Background(), "ada@example.com", "hunter22")

	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada", u.Name)
}

func TestRequestPasswordResetUnknownEmailSucceedsSilently(t *testing.T) {
	p := &LocalProvider{Repo: seededRepo(t)}

	err := p.RequestPasswordReset(context.Background(), "nobody@example.com")

	assert.NoError(t, err, "unknown addresses must not be distinguishable")
}

func TestMessageUnwrapsProviderError(t *testing.T) {
	assert.Equal(t, "boom", Message(NewError("boom")))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Empty(t, Message(nil))
}
