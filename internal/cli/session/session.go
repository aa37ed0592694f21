package session

import (
	"fmt"
	"sync"

	"github.com/mesboard-dev/mesboard/internal/auth"
)

// State is the lifecycle state of the local session
type State int

const (
	// StateUnauthenticated is the zero value, so a Snapshot that was
	// never produced by a Manager reads as signed out, never as still
	// loading.
	StateUnauthenticated State = iota
	// StateLoading is the Manager's initial state, before the persisted
	// record has been consulted. It is visited exactly once.
	StateLoading
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the session
type Snapshot struct {
	State  State
	UserID string
	Role   auth.Role
}

// IsLoading reports whether the session has not been bootstrapped yet
func (s Snapshot) IsLoading() bool {
	return s.State == StateLoading
}

// IsAuthenticated reports whether a user is signed in
func (s Snapshot) IsAuthenticated() bool {
	return s.State == StateAuthenticated
}

// Manager owns the session lifecycle: Loading until Bootstrap consults the
// persisted record, then Authenticated or Unauthenticated. All state flips
// happen after the persistence side effect has succeeded, so the in-memory
// view never claims a session the disk does not hold.
type Manager struct {
	mu      sync.Mutex
	adapter Adapter

	state  State
	userID string
	role   auth.Role
}

// NewManager creates a Manager in the Loading state
func NewManager(adapter Adapter) *Manager {
	return &Manager{
		adapter: adapter,
		state:   StateLoading,
	}
}

// Bootstrap resolves the Loading state from the persisted record. Absent
// or malformed records resolve to Unauthenticated; there is no error path.
// Calling it again after the first resolution behaves like Reinitialize.
func (m *Manager) Bootstrap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyRecord(m.adapter.Load())
}

// Reinitialize re-reads the persisted record without revisiting Loading.
// Used after an external change to the persisted session (another process
// logging out, an expired token being purged).
func (m *Manager) Reinitialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyRecord(m.adapter.Load())
}

func (m *Manager) applyRecord(rec Record, ok bool) {
	if !ok {
		m.state = StateUnauthenticated
		m.userID = ""
		m.role = auth.RoleUser
		return
	}

	m.state = StateAuthenticated
	m.userID = rec.UserID
	m.role = auth.ParseRole(rec.Role)
}

// Login persists the session to the chosen medium and then flips the state
// to Authenticated. If persistence fails the state is left untouched.
func (m *Manager) Login(userID string, role auth.Role, durable bool) error {
	if userID == "" {
		return fmt.Errorf("user id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{UserID: userID, Role: string(role)}
	if err := m.adapter.Save(rec, durable); err != nil {
		return err
	}

	m.state = StateAuthenticated
	m.userID = userID
	m.role = role
	return nil
}

// Logout clears both persisted media and then flips the state to
// Unauthenticated. Logging out while already signed out is a no-op.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.adapter.Clear(); err != nil {
		return err
	}

	m.state = StateUnauthenticated
	m.userID = ""
	m.role = auth.RoleUser
	return nil
}

// Snapshot returns a consistent view of the current session
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State:  m.state,
		UserID: m.userID,
		Role:   m.role,
	}
}
