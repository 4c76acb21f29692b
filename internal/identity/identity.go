// Package identity supplies the locally generated device identity the quiz
// core keys attempts by. A DeviceIdentity is deliberately not an
// authenticated principal: it is stable per device, not per person, and
// nothing here verifies who is holding it.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DeviceIdentity is the capability-limited identity attempts are keyed by.
type DeviceIdentity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// FileStore persists one DeviceIdentity as a JSON file on the device.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored identity, or a freshly generated one persisted on
// first use. The generated UserID is stable across sessions on this device.
func (s *FileStore) Load() (DeviceIdentity, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var id DeviceIdentity
		if err := json.Unmarshal(data, &id); err == nil && id.UserID != "" {
			return id, nil
		}
		// Corrupt file: regenerate rather than fail the quiz flow.
	} else if !os.IsNotExist(err) {
		return DeviceIdentity{}, fmt.Errorf("read identity: %w", err)
	}

	id := DeviceIdentity{UserID: uuid.NewString()}
	if err := s.save(id); err != nil {
		return DeviceIdentity{}, err
	}
	return id, nil
}

// SetDisplayName records the name captured before the user's first quiz.
func (s *FileStore) SetDisplayName(name string) (DeviceIdentity, error) {
	id, err := s.Load()
	if err != nil {
		return DeviceIdentity{}, err
	}
	id.DisplayName = name
	if err := s.save(id); err != nil {
		return DeviceIdentity{}, err
	}
	return id, nil
}

func (s *FileStore) save(id DeviceIdentity) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create identity dir: %w", err)
		}
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
