// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package security authenticates translators and checks what they may reach.

Users are carried in signed PASETO v4.public tokens. A token names the user
(subject) and lists the path globs the user is permitted to access.
*/
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Implicit is the domain separation assertion bound into every token.
// Changing it invalidates every token issued before.
const Implicit = "inline translator user token"

const permissionsClaim = "permissions"

var (
	// ErrUnauthenticated is returned when a request carries no valid token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the user lacks the permission for a path.
	ErrForbidden = errors.New("permission denied")

	errEmptySubject = errors.New("token has no subject")
)

// User is an authenticated translator.
type User struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// IsPathAllowed reports whether any of the user's permission globs matches path.
func (u *User) IsPathAllowed(path string) bool {
	if u == nil {
		return false
	}

	for _, pattern := range u.Permissions {
		if MatchPath(pattern, path) {
			return true
		}
	}

	return false
}

// NewSecretKeyHex generates a fresh v4.public secret key in hex.
func NewSecretKeyHex() string {
	return paseto.NewV4AsymmetricSecretKey().ExportHex()
}

// Authority issues and verifies user tokens.
type Authority struct {
	secret paseto.V4AsymmetricSecretKey
	parser paseto.Parser
}

// NewAuthority loads a hex-encoded v4.public secret key.
func NewAuthority(secretHex string) (*Authority, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(strings.TrimSpace(secretHex))
	if err != nil {
		return nil, fmt.Errorf("invalid paseto secret key: %w", err)
	}

	return &Authority{
		secret: secret,
		parser: paseto.MakeParser([]paseto.Rule{paseto.NotExpired()}),
	}, nil
}

// PublicKeyHex returns the public half of the key, for verification elsewhere.
func (a *Authority) PublicKeyHex() string {
	return a.secret.Public().ExportHex()
}

// Issue signs a token for user valid for ttl.
func (a *Authority) Issue(user User, ttl time.Duration) (string, error) {
	if user.Name == "" {
		return "", errEmptySubject
	}

	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(ttl))
	token.SetSubject(user.Name)

	if err := token.Set(permissionsClaim, user.Permissions); err != nil {
		return "", fmt.Errorf("failed to set permissions claim: %w", err)
	}

	return token.V4Sign(a.secret, []byte(Implicit)), nil
}

// Verify parses a signed token. Every failure wraps ErrUnauthenticated.
func (a *Authority) Verify(signed string) (*User, error) {
	if signed == "" {
		return nil, ErrUnauthenticated
	}

	token, err := a.parser.ParseV4Public(a.secret.Public(), signed, []byte(Implicit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, errEmptySubject)
	}

	var permissions []string
	if err := token.Get(permissionsClaim, &permissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	return &User{Name: subject, Permissions: permissions}, nil
}
