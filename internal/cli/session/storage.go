package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName   = "mesboard"
	durableFileName = "session.json"
	tempFileName    = "mesboard-session.json"
)

// Record is the persisted session. It round-trips the identity and role;
// everything else about a session is in-memory only.
type Record struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Adapter persists a Record in exactly one of two media: a durable slot
// that survives restarts ("remember me") and an ephemeral slot that does
// not. Load treats malformed content as absent, never as a failure.
type Adapter interface {
	Load() (Record, bool)
	Save(rec Record, durable bool) error
	Clear() error
}

// FileAdapter stores the record as a JSON file. The durable medium lives
// under the user config directory, the ephemeral one under the OS temp
// directory (cleared by the OS between sessions).
type FileAdapter struct {
	durablePath   string
	ephemeralPath string
}

// NewFileAdapter creates an adapter with the default medium locations
func NewFileAdapter() (*FileAdapter, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return &FileAdapter{
		durablePath:   filepath.Join(homeDir, ".config", configDirName, durableFileName),
		ephemeralPath: filepath.Join(os.TempDir(), tempFileName),
	}, nil
}

// NewFileAdapterAt creates an adapter with explicit medium paths
func NewFileAdapterAt(durablePath, ephemeralPath string) *FileAdapter {
	return &FileAdapter{
		durablePath:   durablePath,
		ephemeralPath: ephemeralPath,
	}
}

// Load reads the persisted record, preferring the durable medium. Missing
// files, unreadable files, malformed JSON, and records without an identity
// all load as absent - indistinguishable from never having logged in.
func (a *FileAdapter) Load() (Record, bool) {
	for _, path := range []string{a.durablePath, a.ephemeralPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		if rec.UserID == "" {
			continue
		}

		return rec, true
	}

	return Record{}, false
}

// Save writes the record to the chosen medium and removes it from the
// other, so the two media can never disagree about the session.
func (a *FileAdapter) Save(rec Record, durable bool) error {
	target, other := a.ephemeralPath, a.durablePath
	if durable {
		target, other = a.durablePath, a.ephemeralPath
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := os.WriteFile(target, data, 0600); err != nil {
		return fmt.Errorf("failed to write session record: %w", err)
	}

	if err := os.Remove(other); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear stale session record: %w", err)
	}

	return nil
}

// Clear removes the record from both media. Clearing an already-clear
// state is a no-op.
func (a *FileAdapter) Clear() error {
	for _, path := range []string{a.durablePath, a.ephemeralPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove session record: %w", err)
		}
	}
	return nil
}
