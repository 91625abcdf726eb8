package pollclient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Memory is the durable local record of which option this user chose
// per poll, the stand-in for the browser's localStorage. It is read
// once at mount and written through on a confirmed vote or a detected
// duplicate; nothing ever clears it.
type Memory struct {
	path  string
	mu    sync.Mutex
	voted map[string]string
}

// DefaultMemoryPath places the vote file under the user config dir.
func DefaultMemoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pollwire", "voted.json"), nil
}

// OpenMemory loads the vote record at path, starting empty when the
// file does not exist yet.
func OpenMemory(path string) (*Memory, error) {
	m := &Memory{path: path, voted: make(map[string]string)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &m.voted); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns the remembered option for the poll, if any.
func (m *Memory) Get(pollID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	optionID, ok := m.voted[pollID]
	return optionID, ok
}

// Set records the choice and persists immediately.
func (m *Memory) Set(pollID, optionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voted[pollID] = optionID

	raw, err := json.MarshalIndent(m.voted, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.path, raw, 0o600)
}
