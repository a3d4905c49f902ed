// Package app implements storefront use cases and defines ports (storage and remote service interfaces).
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaakkos/storefront/internal/domain"
)

// Storage keys used inside a profile scope.
const (
	SessionKey = "session"
	CartKey    = "cart"
)

// KeyValueStore is the durable storage port. Implementations are scoped to one
// profile, so keys such as SessionKey never collide across profiles.
// Implementations: internal/repository/sqlite, internal/repository/redis, internal/repository/memory.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Registration is the payload of a sign-up request.
type Registration struct {
	Username string
	Email    string
	Password string
}

// IdentityService issues tokens and registers users.
// Implementation: internal/api.IdentityClient.
type IdentityService interface {
	// Login returns the token from a successful response. An empty token with a nil
	// error means the server answered 2xx without one.
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, reg Registration) error
}

// CatalogService reads products. Implementation: internal/api.CatalogClient.
type CatalogService interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
}

// Errors returned by remote service adapters. The use cases translate them into *Error.
var (
	// ErrNotConfigured means no API base URL was configured.
	ErrNotConfigured = errors.New("api endpoint not configured")
	// ErrMalformedResponse means a 2xx response body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response body")
)

// RemoteError is a non-2xx answer from a remote service.
type RemoteError struct {
	StatusCode int
	// Message is the server-provided "message" field, if any.
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote status %d", e.StatusCode)
}
