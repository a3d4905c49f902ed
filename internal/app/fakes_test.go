package app

import (
	"context"
	"errors"
	"sync"

	"github.com/jaakkos/storefront/internal/domain"
)

var errDisk = errors.New("disk unavailable")

// memStore is an in-memory KeyValueStore with failure injection.
type memStore struct {
	mu        sync.Mutex
	data      map[string]string
	getErr    error
	setErr    error
	deleteErr error
	sets      int
	deletes   int
	// onGet runs after Get has read its value and before it returns.
	onGet     func()
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	v, ok := s.data[key]
	err, hook := s.getErr, s.onGet
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return "", false, err
	}
	return v, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.data, key)
	return nil
}

func (s *memStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// fakeIdentity records calls and answers with the configured functions.
type fakeIdentity struct {
	mu            sync.Mutex
	loginCalls    int
	registerCalls int
	lastReg       Registration
	login         func(ctx context.Context, username, password string) (string, error)
	register      func(ctx context.Context, reg Registration) error
}

func (f *fakeIdentity) Login(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.login
	f.mu.Unlock()
	if fn == nil {
		return "abc123", nil
	}
	return fn(ctx, username, password)
}

func (f *fakeIdentity) Register(ctx context.Context, reg Registration) error {
	f.mu.Lock()
	f.registerCalls++
	f.lastReg = reg
	fn := f.register
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, reg)
}

func (f *fakeIdentity) calls() (login, register int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.registerCalls
}

func tokenFor(token string) func(context.Context, string, string) (string, error) {
	return func(context.Context, string, string) (string, error) { return token, nil }
}

func failWith(err error) func(context.Context, string, string) (string, error) {
	return func(context.Context, string, string) (string, error) { return "", err }
}

// fakeCatalog serves a fixed product list.
type fakeCatalog struct {
	products []domain.Product
	err      error
	// onProduct runs before Product returns, e.g. to cancel the caller's context.
	onProduct func()
}

func (f *fakeCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) Product(ctx context.Context, id int) (domain.Product, error) {
	if f.onProduct != nil {
		f.onProduct()
	}
	if f.err != nil {
		return domain.Product{}, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &RemoteError{StatusCode: 404}
}
