package app

import (
	"context"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/jaakkos/storefront/internal/domain"
)

// SessionManager owns authentication state. All mutation goes through its
// methods; readers use Snapshot or Subscribe.
//
// State changes are committed under mu and then published to listeners in
// commit order (pubMu). Network and storage I/O run outside mu, so Snapshot
// observes StateAuthenticating while a request is outstanding.
type SessionManager struct {
	store    KeyValueStore
	identity IdentityService
	logger   *log.Logger
	opts     options

	pubMu    sync.Mutex
	mu       sync.Mutex
	session  domain.Session
	inflight bool
	gen      uint64 // bumped when a sign-in finishes or on sign-out; Restore drops reads that span one

	subs subscribers[domain.Session]
}

// NewSessionManager returns a manager in StateUnknown. Call Restore once at startup.
func NewSessionManager(store KeyValueStore, identity IdentityService, logger *log.Logger, opts ...Option) *SessionManager {
	return &SessionManager{
		store:    store,
		identity: identity,
		logger:   logger,
		opts:     applyOptions(opts),
		session:  domain.Session{State: domain.StateUnknown},
	}
}

// Snapshot returns the current session state.
func (m *SessionManager) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Subscribe registers fn to run after every committed change. fn receives the
// committed state and must not call SignIn, SignUp, SignOut or Restore.
func (m *SessionManager) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	return m.subs.add(fn)
}

// Reset drops all listeners and returns the manager to StateUnknown without
// touching storage.
func (m *SessionManager) Reset() {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()
	m.mu.Lock()
	m.session = domain.Session{State: domain.StateUnknown}
	m.inflight = false
	m.gen++
	m.mu.Unlock()
	m.subs.reset()
}

// commit applies fn under the state lock and, if fn reports a change,
// publishes the resulting snapshot.
func (m *SessionManager) commit(fn func(s *domain.Session) bool) domain.Session {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()
	m.mu.Lock()
	changed := fn(&m.session)
	snap := m.session
	m.mu.Unlock()
	if changed {
		m.subs.publish(snap)
	}
	return snap
}

// Restore reads the persisted token. A hit leaves the session authenticated;
// a miss or a read failure leaves it unauthenticated. It never fails.
// Restore is skipped while a sign-in is outstanding, and its read is discarded
// if a sign-in or sign-out completed while the read was in progress.
func (m *SessionManager) Restore(ctx context.Context) {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	token, ok, err := m.store.Get(ctx, SessionKey)
	if err != nil {
		logf(m.logger, "Warning: session read failed: %v (continuing signed out)", err)
		token, ok = "", false
	}
	m.commit(func(s *domain.Session) bool {
		if m.inflight || m.gen != gen {
			return false
		}
		prev := *s
		if ok && token != "" {
			s.Token = token
			s.State = domain.StateAuthenticated
		} else {
			s.Token = ""
			s.State = domain.StateUnauthenticated
		}
		return *s != prev
	})
}

// SignIn authenticates against the identity service and persists the token.
// The returned error is an *Error; its message is also stored in the session.
func (m *SessionManager) SignIn(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return m.reject(newError(KindValidation, MsgCredentialsRequired, nil))
	}
	hadToken, ok := m.begin()
	if !ok {
		return newError(KindBusy, MsgBusy, nil)
	}
	token, err := m.authenticate(ctx, username, password)
	return m.finish(ctx, token, err, hadToken)
}

// SignUp validates the form, registers the user and then signs in with the
// same credentials. The sign-in outcome is the result.
func (m *SessionManager) SignUp(ctx context.Context, username, password, confirmPassword, email string) error {
	switch {
	case username == "" || password == "" || confirmPassword == "" || email == "":
		return m.reject(newError(KindValidation, MsgAllFieldsRequired, nil))
	case password != confirmPassword:
		return m.reject(newError(KindValidation, MsgPasswordsMismatch, nil))
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return m.reject(newError(KindValidation, MsgPasswordTooShort, nil))
	}
	hadToken, ok := m.begin()
	if !ok {
		return newError(KindBusy, MsgBusy, nil)
	}
	if err := m.identity.Register(ctx, Registration{Username: username, Email: email, Password: password}); err != nil {
		return m.finish(ctx, "", registerError(err), hadToken)
	}
	logf(m.logger, "Registered user %s, signing in", username)
	token, err := m.authenticate(ctx, username, password)
	return m.finish(ctx, token, err, hadToken)
}

// SignOut drops the token locally and in storage. It never fails; storage
// errors are logged. Calling it while signed out changes nothing.
func (m *SessionManager) SignOut(ctx context.Context) {
	if err := m.store.Delete(ctx, SessionKey); err != nil {
		logf(m.logger, "Warning: session delete failed: %v", err)
	} else {
		m.touch()
	}
	m.commit(func(s *domain.Session) bool {
		m.gen++
		prev := *s
		s.Token = ""
		s.Error = ""
		if !m.inflight {
			s.State = domain.StateUnauthenticated
		}
		return *s != prev
	})
}

// reject records a validation failure without changing token or state.
func (m *SessionManager) reject(e *Error) error {
	m.commit(func(s *domain.Session) bool {
		if m.inflight {
			return false
		}
		prev := *s
		s.Error = e.Message
		return *s != prev
	})
	return e
}

// begin enters StateAuthenticating. ok is false when another attempt is outstanding.
func (m *SessionManager) begin() (hadToken, ok bool) {
	m.commit(func(s *domain.Session) bool {
		if m.inflight {
			return false
		}
		m.inflight = true
		ok = true
		hadToken = s.Token != ""
		s.Error = ""
		s.State = domain.StateAuthenticating
		return true
	})
	return hadToken, ok
}

// authenticate performs the login round-trip and the durable write.
func (m *SessionManager) authenticate(ctx context.Context, username, password string) (string, error) {
	token, err := m.identity.Login(ctx, username, password)
	if err != nil {
		return "", loginError(err)
	}
	if token == "" {
		return "", newError(KindProtocol, MsgInvalidResponse, nil)
	}
	if err := m.store.Set(ctx, SessionKey, token); err != nil {
		return "", newError(KindStorage, MsgSaveSessionFailed, err)
	}
	m.touch()
	return token, nil
}

// finish leaves StateAuthenticating. On failure the session ends signed out;
// a token persisted by an earlier sign-in is removed as well.
func (m *SessionManager) finish(ctx context.Context, token string, err error, hadToken bool) error {
	if err != nil {
		logf(m.logger, "Sign-in failed: %s", describe(err))
		if hadToken {
			if derr := m.store.Delete(ctx, SessionKey); derr != nil {
				logf(m.logger, "Warning: session delete failed: %v", derr)
			} else {
				m.touch()
			}
		}
	}
	m.commit(func(s *domain.Session) bool {
		m.inflight = false
		m.gen++
		if err != nil {
			s.Token = ""
			s.State = domain.StateUnauthenticated
			s.Error = err.Error()
			return true
		}
		s.Token = token
		s.State = domain.StateAuthenticated
		s.Error = ""
		return true
	})
	return err
}

func (m *SessionManager) touch() {
	if err := TouchNotifySignal(m.opts.signalPath); err != nil {
		logf(m.logger, "Warning: touch notify signal: %v", err)
	}
}

// describe renders an *Error with its cause for logs.
func describe(err error) string {
	if e, ok := err.(*Error); ok && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return err.Error()
}
