package main

// Local stand-in for the store API (login, users, products) for development
// and tests. Users live in memory; the demo account mor_2314 / 83r5^_ is
// always present. Tokens are HS256 JWTs signed with MOCK_JWT_SECRET.

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jaakkos/storefront/internal/api"
	"github.com/jaakkos/storefront/internal/config"
	"github.com/jaakkos/storefront/internal/domain"
)

type mockUser struct {
	ID       int
	Username string
	Email    string
	Password string
}

// mockBackend holds the in-memory users and catalog.
type mockBackend struct {
	secret   []byte
	logger   *log.Logger
	products []domain.Product

	mu     sync.Mutex
	users  map[string]mockUser
	nextID int
}

func newMockBackend(secret []byte, logger *log.Logger) *mockBackend {
	return &mockBackend{
		secret:   secret,
		logger:   logger,
		products: seedProducts(),
		users: map[string]mockUser{
			"johnd":    {ID: 1, Username: "johnd", Email: "john@gmail.com", Password: "m38rmF$"},
			"mor_2314": {ID: 2, Username: "mor_2314", Email: "morrison@gmail.com", Password: "83r5^_"},
		},
		nextID: 3,
	}
}

// routes builds the HTTP router.
func (m *mockBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(m.requestLogger)

	r.Post("/auth/login", m.handleLogin)
	r.Post("/users", m.handleCreateUser)
	r.Get("/products", m.handleProducts)
	r.Get("/products/{id}", m.handleProduct)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (m *mockBackend) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.logger.Printf("Mock backend: %s %s %d %v id=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), r.Header.Get(api.HeaderRequestID))
	})
}

func (m *mockBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	m.mu.Lock()
	u, ok := m.users[req.Username]
	m.mu.Unlock()
	if !ok || u.Password != req.Password {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("username or password is incorrect"))
		return
	}

	token, err := m.issueToken(u)
	if err != nil {
		m.logger.Printf("Mock backend: sign token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "token signing failed"})
		return
	}
	writeJSON(w, http.StatusOK, api.LoginResponse{Token: token})
}

func (m *mockBackend) issueToken(u mockUser) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"user": u.Username,
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *mockBackend) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "username, email and password are required"})
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid email address"})
		return
	}

	m.mu.Lock()
	if _, exists := m.users[req.Username]; exists {
		m.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Username already exists"})
		return
	}
	u := mockUser{ID: m.nextID, Username: req.Username, Email: req.Email, Password: req.Password}
	m.users[u.Username] = u
	m.nextID++
	m.mu.Unlock()

	m.logger.Printf("Mock backend: user registered: %s (id %d)", u.Username, u.ID)
	writeJSON(w, http.StatusCreated, api.RegisterResponse{ID: u.ID, Username: u.Username, Email: u.Email})
}

func (m *mockBackend) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.products)
}

func (m *mockBackend) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid product id"})
		return
	}
	for _, p := range m.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "product not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops", Price: 109.95, Category: "men's clothing",
			Description: "Your perfect pack for everyday use and walks in the forest.",
			Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg", Rating: &domain.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "Mens Casual Premium Slim Fit T-Shirts", Price: 22.3, Category: "men's clothing",
			Description: "Slim-fitting style, contrast raglan long sleeve, three-button henley placket.",
			Image:       "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg", Rating: &domain.Rating{Rate: 4.1, Count: 259}},
		{ID: 3, Title: "Mens Cotton Jacket", Price: 55.99, Category: "men's clothing",
			Description: "Great outerwear jackets for Spring, Autumn and Winter.",
			Image:       "https://fakestoreapi.com/img/71li-ujtlUL._AC_UX679_.jpg", Rating: &domain.Rating{Rate: 4.7, Count: 500}},
		{ID: 5, Title: "John Hardy Women's Legends Naga Gold & Silver Dragon Station Chain Bracelet", Price: 695, Category: "jewelery",
			Description: "From our Legends Collection, the Naga was inspired by the mythical water dragon.",
			Image:       "https://fakestoreapi.com/img/71pWzhdJNwL._AC_UL640_QL65_ML3_.jpg", Rating: &domain.Rating{Rate: 4.6, Count: 400}},
		{ID: 9, Title: "WD 2TB Elements Portable External Hard Drive - USB 3.0", Price: 64, Category: "electronics",
			Description: "USB 3.0 and USB 2.0 compatibility, fast data transfers.",
			Image:       "https://fakestoreapi.com/img/61IBBVJvSDL._AC_SY879_.jpg", Rating: &domain.Rating{Rate: 3.3, Count: 203}},
	}
}

// runMockBackend serves the mock API on addr until ctx is cancelled.
func runMockBackend(ctx context.Context, addr string, logger *log.Logger) error {
	secret := os.Getenv("MOCK_JWT_SECRET")
	if secret == "" {
		secret = "storefront-dev-secret"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMockBackend([]byte(secret), logger).routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Mock backend shutdown: %v", err)
		}
	}()

	logger.Printf("Mock backend listening on %s; point %s at it", addr, config.EnvAPIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Println("Mock backend stopped")
	return nil
}
