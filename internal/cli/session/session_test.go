package session

import (
	"errors"
	"testing"

	"github.com/mesboard-dev/mesboard/internal/auth"
)

// recordingAdapter tracks persistence calls so tests can check ordering
// between side effects and state flips
type recordingAdapter struct {
	rec     Record
	present bool
	saveErr error
	saves   int
	clears  int
}

func (a *recordingAdapter) Load() (Record, bool) {
	return a.rec, a.present
}

func (a *recordingAdapter) Save(rec Record, durable bool) error {
	if a.saveErr != nil {
		return a.saveErr
	}
	a.rec = rec
	a.present = true
	a.saves++
	return nil
}

func (a *recordingAdapter) Clear() error {
	a.rec = Record{}
	a.present = false
	a.clears++
	return nil
}

func TestManager_StartsLoading(t *testing.T) {
	mgr := NewManager(&recordingAdapter{})

	snap := mgr.Snapshot()
	if !snap.IsLoading() {
		t.Errorf("state = %v, want loading", snap.State)
	}
}

func TestManager_BootstrapWithoutRecord(t *testing.T) {
	mgr := NewManager(&recordingAdapter{})
	mgr.Bootstrap()

	snap := mgr.Snapshot()
	if snap.State != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", snap.State)
	}
	if snap.UserID != "" {
		t.Errorf("user id = %q, want empty", snap.UserID)
	}
}

func TestManager_BootstrapWithRecord(t *testing.T) {
	adapter := &recordingAdapter{
		rec:     Record{UserID: "user-1", Role: "ADMIN"},
		present: true,
	}

	mgr := NewManager(adapter)
	mgr.Bootstrap()

	snap := mgr.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatalf("state = %v, want authenticated", snap.State)
	}
	if snap.UserID != "user-1" {
		t.Errorf("user id = %q, want %q", snap.UserID, "user-1")
	}
	if snap.Role != auth.RoleAdmin {
		t.Errorf("role = %q, want %q", snap.Role, auth.RoleAdmin)
	}
}

func TestManager_BootstrapUnknownRoleFallsBack(t *testing.T) {
	adapter := &recordingAdapter{
		rec:     Record{UserID: "user-1", Role: "SUPERVISOR"},
		present: true,
	}

	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if role := mgr.Snapshot().Role; role != auth.RoleUser {
		t.Errorf("role = %q, want fallback %q", role, auth.RoleUser)
	}
}

func TestManager_LoginPersistsThenAuthenticates(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("user-1", auth.RoleAdmin, true); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if adapter.saves != 1 {
		t.Errorf("saves = %d, want 1", adapter.saves)
	}
	if adapter.rec.UserID != "user-1" || adapter.rec.Role != "ADMIN" {
		t.Errorf("persisted record = %+v", adapter.rec)
	}

	snap := mgr.Snapshot()
	if !snap.IsAuthenticated() {
		t.Errorf("state = %v, want authenticated", snap.State)
	}
}

func TestManager_LoginSaveFailureLeavesStateUntouched(t *testing.T) {
	adapter := &recordingAdapter{saveErr: errors.New("disk full")}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("user-1", auth.RoleUser, false); err == nil {
		t.Fatal("expected login to fail")
	}

	snap := mgr.Snapshot()
	if snap.IsAuthenticated() {
		t.Error("state flipped to authenticated despite failed persistence")
	}
}

func TestManager_LoginRejectsEmptyUserID(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("", auth.RoleUser, false); err == nil {
		t.Fatal("expected login with empty user id to fail")
	}
	if adapter.saves != 0 {
		t.Errorf("saves = %d, want 0", adapter.saves)
	}
}

func TestManager_ReloginReplacesSession(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("user-1", auth.RoleUser, false); err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if err := mgr.Login("user-2", auth.RoleAdmin, true); err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	snap := mgr.Snapshot()
	if snap.UserID != "user-2" || snap.Role != auth.RoleAdmin {
		t.Errorf("snapshot = %+v, want user-2/ADMIN", snap)
	}
	if adapter.rec.UserID != "user-2" {
		t.Errorf("persisted user = %q, want user-2", adapter.rec.UserID)
	}
}

func TestManager_LogoutClearsThenDeauthenticates(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("user-1", auth.RoleUser, true); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := mgr.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if adapter.clears != 1 {
		t.Errorf("clears = %d, want 1", adapter.clears)
	}

	snap := mgr.Snapshot()
	if snap.State != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", snap.State)
	}
	if snap.UserID != "" {
		t.Errorf("user id = %q, want empty", snap.UserID)
	}
}

func TestManager_DoubleLogoutIsHarmless(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Logout(); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if err := mgr.Logout(); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}

	if mgr.Snapshot().State != StateUnauthenticated {
		t.Error("expected state to stay unauthenticated")
	}
}

func TestManager_ReinitializeSkipsLoading(t *testing.T) {
	adapter := &recordingAdapter{}
	mgr := NewManager(adapter)
	mgr.Bootstrap()

	if err := mgr.Login("user-1", auth.RoleUser, true); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Simulate another process clearing the persisted session
	adapter.rec = Record{}
	adapter.present = false

	mgr.Reinitialize()

	snap := mgr.Snapshot()
	if snap.IsLoading() {
		t.Error("reinitialize must not revisit the loading state")
	}
	if snap.State != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated after external clear", snap.State)
	}
}

func TestManager_FileAdapterRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)

	mgr := NewManager(adapter)
	mgr.Bootstrap()
	if err := mgr.Login("user-1", auth.RoleAdmin, true); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// A fresh manager over the same files resumes the session
	resumed := NewManager(adapter)
	resumed.Bootstrap()

	snap := resumed.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatalf("state = %v, want authenticated", snap.State)
	}
	if snap.UserID != "user-1" || snap.Role != auth.RoleAdmin {
		t.Errorf("snapshot = %+v, want user-1/ADMIN", snap)
	}
}
