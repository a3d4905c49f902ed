// Package domain holds storefront entities: session state, catalog products and the cart aggregate.
// It has no dependencies on other packages.
package domain

// AuthState is a position in the session lifecycle.
type AuthState string

const (
	// StateUnknown is the initial state while the durable storage read is pending.
	StateUnknown         AuthState = "unknown"
	StateUnauthenticated AuthState = "unauthenticated"
	StateAuthenticating  AuthState = "authenticating"
	StateAuthenticated   AuthState = "authenticated"
)

// Session is an immutable snapshot of authentication state.
// An empty Token means no credential is held; an empty Error means no failure is pending display.
type Session struct {
	Token string    `json:"token,omitempty"`
	State AuthState `json:"state"`
	Error string    `json:"error,omitempty"`
}

// IsLoading reports whether a storage read or a sign-in/sign-up round-trip is outstanding.
func (s Session) IsLoading() bool {
	return s.State == StateUnknown || s.State == StateAuthenticating
}

// IsAuthenticated reports whether the session holds a token.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Rating is the aggregated review score of a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog item as served by the catalog service.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Rating      *Rating `json:"rating,omitempty"`
}
