package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pulseboard/pulseboard/internal/domain/entity"
	"github.com/pulseboard/pulseboard/internal/domain/repository"
	"github.com/pulseboard/pulseboard/pkg/helpers"
	"github.com/pulseboard/pulseboard/pkg/mailer"
)

// Reset-token slot in Redis, keyed by the opaque token.
func keyResetToken(t string) string { return "pwd:reset:token:" + t }

// LocalProvider implements Provider against the application's own user store:
// bcrypt credential checks, OAuth completion via OAuthManager, and reset
// emails dispatched through the RabbitMQ/Mailgun pipeline.
type LocalProvider struct {
	Repo   repository.UserRepository
	RDB    *redis.Client
	Pub    *helpers.RabbitPublisher
	OAuth  *OAuthManager
	Logger *logrus.Logger

	ResetURL        string
	ResetTokenTTL   time.Duration
	MailSendEnabled bool
}

func (p *LocalProvider) SignInWithCredentials(ctx context.Context, email, password string) (*User, error) {
	u, err := p.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, NewError("no account found for this email")
	}
	if u.Password == "" {
		// OAuth-only account; steer the user to the social buttons.
		return nil, NewError("this email is registered through a social login")
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, NewError("incorrect password")
	}
	return &User{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

func (p *LocalProvider) SignInWithOAuth(ctx context.Context, provider, code string) (*User, error) {
	email, name, err := p.OAuth.Complete(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, Name: name, Provider: provider}
	if err := p.Repo.UpsertOAuth(ctx, u); err != nil {
		if p.Logger != nil {
			p.Logger.WithError(err).WithField("provider", provider).Error("oauth upsert failed")
		}
		return nil, NewError("could not establish account")
	}
	return &User{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

// RequestPasswordReset issues a reset token and enqueues the email. Unknown
// addresses return success without side effects so the endpoint cannot be
// used to probe for accounts.
func (p *LocalProvider) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := p.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if p.Logger != nil {
			p.Logger.WithField("email", email).Info("password reset requested for unknown email")
		}
		return nil
	}

	tok, err := helpers.GenToken(32)
	if err != nil {
		return NewError("could not issue reset token")
	}
	if p.RDB != nil {
		if err := p.RDB.Set(ctx, keyResetToken(tok), u.ID, p.ResetTokenTTL).Err(); err != nil {
			return NewError("could not issue reset token")
		}
	}

	link := p.ResetURL + "?token=" + tok
	if p.Pub != nil && p.MailSendEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateReset,
			Data: map[string]any{
				"Name":      u.Name,
				"ResetURL":  link,
				"ExpiresIn": p.ResetTokenTTL.String(),
			},
		}
		if err := p.Pub.PublishJSON(ctx, job); err != nil && p.Logger != nil {
			p.Logger.WithError(err).Warn("reset email enqueue failed")
		}
	}
	return nil
}

// SignOut has no provider-side state to tear down; session markers are owned
// by the session store and removed by the caller.
func (p *LocalProvider) SignOut(ctx context.Context) error { return nil }

// ConsumeResetToken resolves a reset token to its user ID and deletes it.
// Used by the reset-confirm endpoint.
func (p *LocalProvider) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if p.RDB == nil {
		return "", NewError("reset unavailable")
	}
	uid, err := p.RDB.Get(ctx, keyResetToken(token)).Result()
	if err != nil || uid == "" {
		return "", NewError("invalid or expired token")
	}
	p.RDB.Del(ctx, keyResetToken(token))
	return uid, nil
}

var _ Provider = (*LocalProvider)(nil)
