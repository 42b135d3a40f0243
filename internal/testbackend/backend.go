// Package testbackend is an in-process stand-in for the clinic REST API,
// used by tests across the module. It speaks the real response envelope,
// issues HS256 access tokens and rotates an http-only refresh cookie.
package testbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/otolor/clinic-client/models"
	"github.com/otolor/clinic-client/pkg/apiclient"
)

const refreshCookieName = "refreshToken"

type account struct {
	user         models.User
	passwordHash []byte
}

type accessClaims struct {
	Role string `json:"role"`
	// Gen ties the token to the backend's expiry generation; bumping the
	// generation invalidates every outstanding token at once.
	Gen int64 `json:"gen"`
	jwt.RegisteredClaims
}

// Backend implements http.Handler. Zero-value knobs give the happy path;
// tests flip them to simulate expiry and refresh outages.
type Backend struct {
	mu       sync.Mutex
	secret   []byte
	accounts map[string]*account // keyed by login
	byID     map[string]*account
	refresh  map[string]string // refresh cookie value -> user id

	// gen is the current expiry generation; tokens carry the generation
	// they were minted in.
	gen atomic.Int64

	// FailRefresh makes /auth/refresh answer 401.
	FailRefresh atomic.Bool
	// RefreshDelay widens the refresh window for concurrency tests.
	RefreshDelay time.Duration

	refreshCalls atomic.Int64
	mux          *http.ServeMux
}

func New() *Backend {
	b := &Backend{
		secret:   []byte("testbackend-hs256-secret"),
		accounts: make(map[string]*account),
		byID:     make(map[string]*account),
		refresh:  make(map[string]string),
	}
	b.seed()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("POST /auth/refresh", b.handleRefresh)
	mux.HandleFunc("POST /auth/logout", b.handleLogout)
	mux.HandleFunc("POST /auth/logout-all", b.handleLogout)
	mux.HandleFunc("GET /auth/me", b.authed(b.handleMe))
	mux.HandleFunc("POST /auth/change-password", b.authed(b.handleChangePassword))
	mux.HandleFunc("GET /doctors", b.authed(b.handleDoctors))
	mux.HandleFunc("GET /appointments", b.authed(b.handleAppointments))
	b.mux = mux
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mux.ServeHTTP(w, r)
}

// ExpireAccessTokens invalidates every access token issued so far; the next
// authed request will 401 and force the client through the refresh path.
func (b *Backend) ExpireAccessTokens() {
	b.gen.Add(1)
}

// RefreshCalls reports how many times /auth/refresh was hit.
func (b *Backend) RefreshCalls() int64 { return b.refreshCalls.Load() }

func (b *Backend) seed() {
	add := func(login, password, role string, perms []string) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(fmt.Sprintf("testbackend: bcrypt: %v", err))
		}
		acc := &account{
			user: models.User{
				ID:        uuid.NewString(),
				FirstName: login,
				LastName:  "Test",
				Email:     login + "@clinic.test",
				Username:  login,
				Role: models.Role{
					ID:          uuid.NewString(),
					Name:        role,
					Permissions: perms,
					IsActive:    true,
				},
				IsActive: true,
			},
			passwordHash: hash,
		}
		b.accounts[login] = acc
		b.byID[acc.user.ID] = acc
	}
	add("root1", "rootpass", models.RoleSuperAdmin, nil)
	add("admin1", "adminpass", models.RoleAdmin, []string{models.PermDoctorsRead, models.PermServicesRead, models.PermAppointmentsRead})
	add("doc1", "docpass", models.RoleDoctor, []string{models.PermServicesRead, models.PermAppointmentsRead})
	add("pat1", "patpass", models.RoleUser, nil)
}

func (b *Backend) issueToken(userID, role string) string {
	claims := accessClaims{
		Role: role,
		Gen:  b.gen.Load(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("testbackend: sign token: %v", err))
	}
	return tok
}

func (b *Backend) verifyToken(tokenStr string) (*account, bool) {
	var claims accessClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected sign method")
		}
		return b.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	if claims.Gen != b.gen.Load() {
		return nil, false
	}
	b.mu.Lock()
	acc := b.byID[claims.Subject]
	b.mu.Unlock()
	if acc == nil {
		return nil, false
	}
	return acc, true
}

func (b *Backend) setRefreshCookie(w http.ResponseWriter, userID string) {
	val := uuid.NewString()
	b.mu.Lock()
	b.refresh[val] = userID
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
	})
}

func (b *Backend) authed(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeFailure(w, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		acc, ok := b.verifyToken(strings.TrimPrefix(header, "Bearer "))
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		next(w, r, acc)
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Login == "" || req.Password == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []apiclient.FieldError{
			{Field: "login", Message: "login and password are required"},
		})
		return
	}
	b.mu.Lock()
	acc := b.accounts[req.Login]
	b.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.Password)) != nil {
		writeFailure(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	b.setRefreshCookie(w, acc.user.ID)
	writeSuccess(w, http.StatusOK, "login successful", models.AuthResponse{
		User:        acc.user,
		AccessToken: b.issueToken(acc.user.ID, acc.user.Role.Name),
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []apiclient.FieldError{
			{Field: "email", Message: "email and password are required"},
		})
		return
	}
	login := req.Username
	if login == "" {
		login = req.Email
	}
	b.mu.Lock()
	if _, exists := b.accounts[login]; exists {
		b.mu.Unlock()
		writeFailure(w, http.StatusConflict, "account already exists", nil)
		return
	}
	b.mu.Unlock()

	hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	acc := &account{
		user: models.User{
			ID:        uuid.NewString(),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Username:  req.Username,
			Role:      models.Role{ID: uuid.NewString(), Name: models.RoleUser, IsActive: true},
			IsActive:  true,
		},
		passwordHash: hash,
	}
	b.mu.Lock()
	b.accounts[login] = acc
	b.byID[acc.user.ID] = acc
	b.mu.Unlock()

	b.setRefreshCookie(w, acc.user.ID)
	writeSuccess(w, http.StatusCreated, "registered", models.AuthResponse{
		User:        acc.user,
		AccessToken: b.issueToken(acc.user.ID, acc.user.Role.Name),
	})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	if b.RefreshDelay > 0 {
		time.Sleep(b.RefreshDelay)
	}
	if b.FailRefresh.Load() {
		writeFailure(w, http.StatusUnauthorized, "refresh token revoked", nil)
		return
	}
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeFailure(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	b.mu.Lock()
	userID, ok := b.refresh[cookie.Value]
	if ok {
		delete(b.refresh, cookie.Value) // rotation: old credential is spent
	}
	acc := b.byID[userID]
	b.mu.Unlock()
	if !ok || acc == nil {
		writeFailure(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	b.setRefreshCookie(w, acc.user.ID)
	writeSuccess(w, http.StatusOK, "token refreshed", models.RefreshTokenResponse{
		AccessToken: b.issueToken(acc.user.ID, acc.user.Role.Name),
	})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		b.mu.Lock()
		delete(b.refresh, cookie.Value)
		b.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: refreshCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeSuccess(w, http.StatusOK, "logged out", struct{}{})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	writeSuccess(w, http.StatusOK, "ok", acc.user)
}

func (b *Backend) handleChangePassword(w http.ResponseWriter, r *http.Request, acc *account) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeFailure(w, http.StatusUnprocessableEntity, "validation failed", []apiclient.FieldError{
			{Field: "confirmPassword", Message: "passwords do not match"},
		})
		return
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(req.CurrentPassword)) != nil {
		writeFailure(w, http.StatusUnauthorized, "current password is wrong", nil)
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	b.mu.Lock()
	acc.passwordHash = hash
	b.mu.Unlock()
	writeSuccess(w, http.StatusOK, "password changed", struct{}{})
}

func (b *Backend) handleDoctors(w http.ResponseWriter, _ *http.Request, _ *account) {
	writeSuccess(w, http.StatusOK, "ok", []models.Doctor{
		{ID: "doc-1", FirstName: "Aziza", LastName: "Karimova", Specialization: "ENT", IsActive: true},
		{ID: "doc-2", FirstName: "Bobur", LastName: "Aliev", Specialization: "Audiology", IsActive: true},
	})
}

func (b *Backend) handleAppointments(w http.ResponseWriter, _ *http.Request, _ *account) {
	writeSuccess(w, http.StatusOK, "ok", []models.Appointment{
		{ID: "apt-1", Doctor: "doc-1", Service: "svc-1", AppointmentDate: "2026-09-01", StartTime: "10:00", Status: models.AppointmentPending},
	})
}

func writeSuccess[T any](w http.ResponseWriter, status int, message string, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiclient.Response[T]{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func writeFailure(w http.ResponseWriter, status int, message string, fieldErrs []apiclient.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiclient.Response[struct{}]{
		Success: false,
		Status:  status,
		Message: message,
		Errors:  fieldErrs,
	})
}
