// authenticator.go - Credential checks and token resolution

package auth

import (
	"context"
	"errors"
	"strconv"

	"go-inventory-backend/models"
)

// UserFinder is the part of the user repository the authenticator needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type Authenticator struct {
	users  UserFinder
	tokens *TokenService
}

func NewAuthenticator(users UserFinder, tokens *TokenService) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// Authenticate returns the user with email if password matches. An unknown
// email and a wrong password both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueFor signs an access token whose subject is the user id.
func (a *Authenticator) IssueFor(user *models.User) (string, error) {
	token, _, err := a.tokens.Issue(strconv.FormatUint(uint64(user.ID), 10))
	return token, err
}

// Resolve returns the current user row for a bearer token.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	subject, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	user, err := a.users.FindByID(ctx, uint(id))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
