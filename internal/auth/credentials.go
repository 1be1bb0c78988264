package auth

import (
	"context"
	"errors"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/helpdesk-dashboard/internal/form"
	"github.com/iliyamo/helpdesk-dashboard/internal/model"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
)

// CredentialsProviderName is the provider the login form signs in with.
const CredentialsProviderName = "credentials"

// UserLookup is the slice of the user repository the provider needs.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// CredentialsProvider checks an email/password pair against the users table.
type CredentialsProvider struct {
	Users UserLookup
}

func (p *CredentialsProvider) Name() string { return CredentialsProviderName }

// Authorize returns the user when the form carries a well-formed email and
// a password matching the stored bcrypt hash.
func (p *CredentialsProvider) Authorize(ctx context.Context, values url.Values) (*model.User, error) {
	creds, errs := form.ParseCredentials(values)
	if errs != nil {
		return nil, nil
	}
	u, err := p.Users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Hasher returns a bcrypt hash function at the given cost, for seeding users.
func Hasher(cost int) func(plain string) (string, error) {
	return func(plain string) (string, error) {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
