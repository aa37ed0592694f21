package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/mesboard-dev/mesboard/internal/cli/client"
	"github.com/mesboard-dev/mesboard/internal/cli/session"
)

// mockTokenStore is a simple in-memory token store for testing
type mockTokenStore struct {
	tokens map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{
		tokens: make(map[string]string),
	}
}

func (m *mockTokenStore) SaveToken(serverURL, token string) error {
	m.tokens[serverURL] = token
	return nil
}

func (m *mockTokenStore) LoadToken(serverURL string) (string, error) {
	token, exists := m.tokens[serverURL]
	if !exists {
		return "", fmt.Errorf("not authenticated. Please run 'mesboard login' first")
	}
	return token, nil
}

func (m *mockTokenStore) DeleteToken(serverURL string) error {
	delete(m.tokens, serverURL)
	return nil
}

func newTestSessionManager(t *testing.T) *session.Manager {
	t.Helper()
	dir := t.TempDir()
	adapter := session.NewFileAdapterAt(
		filepath.Join(dir, "durable.json"),
		filepath.Join(dir, "ephemeral.json"),
	)
	mgr := session.NewManager(adapter)
	mgr.Bootstrap()
	return mgr
}

// mockLoginServer answers /api/auth/login and counts requests
func mockLoginServer(t *testing.T, username, password string, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != "POST" {
			t.Errorf("unexpected method: %s", r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var loginReq struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error": "rejected"}`))
			return
		}

		if loginReq.Username != username || loginReq.Password != password {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Invalid username or password"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "test-token-abc",
			"user": map[string]interface{}{
				"id":       "user-123",
				"username": loginReq.Username,
				"name":     "Test User",
				"role":     "ADMIN",
				"status":   "ACTIVE",
			},
		})
	}))

	return srv, &calls
}

func TestRunLogin_EmptyFieldsFailBeforeAnyRequest(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "missing username", username: "", password: "secret"},
		{name: "missing password", username: "operator1", password: ""},
		{name: "missing both", username: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := mockLoginServer(t, "operator1", "secret", http.StatusOK)
			defer srv.Close()

			err := runLogin(loginOptions{
				APIClient: client.New(srv.URL),
				Sessions:  newTestSessionManager(t),
				Tokens:    newMockTokenStore(),
				Username:  tt.username,
				Password:  tt.password,
			})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if calls.Load() != 0 {
				t.Errorf("requests sent = %d, want 0", calls.Load())
			}
		})
	}
}

func TestRunLogin_Success(t *testing.T) {
	srv, _ := mockLoginServer(t, "admin1", "password123", http.StatusOK)
	defer srv.Close()

	tokens := newMockTokenStore()
	sessions := newTestSessionManager(t)

	err := runLogin(loginOptions{
		APIClient: client.New(srv.URL),
		Sessions:  sessions,
		Tokens:    tokens,
		Username:  "admin1",
		Password:  "password123",
		Remember:  true,
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if tokens.tokens[srv.URL] != "test-token-abc" {
		t.Errorf("stored token = %q, want %q", tokens.tokens[srv.URL], "test-token-abc")
	}

	snap := sessions.Snapshot()
	if !snap.IsAuthenticated() {
		t.Errorf("session state = %v, want authenticated", snap.State)
	}
	if snap.UserID != "user-123" {
		t.Errorf("session user = %q, want user-123", snap.UserID)
	}
	if !snap.Role.IsAdmin() {
		t.Errorf("session role = %q, want admin", snap.Role)
	}
}

func TestRunLogin_InvalidCredentials(t *testing.T) {
	srv, _ := mockLoginServer(t, "admin1", "password123", http.StatusOK)
	defer srv.Close()

	sessions := newTestSessionManager(t)

	err := runLogin(loginOptions{
		APIClient: client.New(srv.URL),
		Sessions:  sessions,
		Tokens:    newMockTokenStore(),
		Username:  "admin1",
		Password:  "wrong-password",
	})
	if !errors.Is(err, client.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	if sessions.Snapshot().IsAuthenticated() {
		t.Error("session must stay unauthenticated after a failed login")
	}
}

func TestRunLogin_DisabledAccount(t *testing.T) {
	srv, _ := mockLoginServer(t, "operator1", "password123", http.StatusForbidden)
	defer srv.Close()

	err := runLogin(loginOptions{
		APIClient: client.New(srv.URL),
		Sessions:  newTestSessionManager(t),
		Tokens:    newMockTokenStore(),
		Username:  "operator1",
		Password:  "password123",
	})
	if !errors.Is(err, client.ErrAccountDisabled) {
		t.Fatalf("err = %v, want ErrAccountDisabled", err)
	}
}

func TestRunLogin_UnreachableServer(t *testing.T) {
	// Grab a URL that is guaranteed not to answer
	srv, _ := mockLoginServer(t, "x", "y", http.StatusOK)
	deadURL := srv.URL
	srv.Close()

	err := runLogin(loginOptions{
		APIClient: client.New(deadURL),
		Sessions:  newTestSessionManager(t),
		Tokens:    newMockTokenStore(),
		Username:  "operator1",
		Password:  "password123",
	})
	if !errors.Is(err, client.ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestNewLoginCmd_Flags(t *testing.T) {
	cmd := NewLoginCmd()

	if cmd.Use != "login" {
		t.Errorf("Use = %q, want %q", cmd.Use, "login")
	}

	for _, flag := range []string{"username", "password", "server", "remember"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to exist", flag)
		}
	}
}
