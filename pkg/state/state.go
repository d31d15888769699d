// Package state persists CLI state between runs: API secrets, selected
// institutions with their requisition ids, the last issued token and the
// per-account set of already-seen transaction ids used for de-duplication.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bankmatch/pkg/crypto"
	"bankmatch/pkg/domain"
)

// Secrets are the API client credentials. When a passphrase is configured
// the key is sealed before it touches disk.
type Secrets struct {
	ID        string `json:"id,omitempty"`
	Key       string `json:"key,omitempty"`
	SealedKey string `json:"sealed_key,omitempty"`
}

type State struct {
	Secrets      Secrets              `json:"secrets"`
	Token        *domain.Token        `json:"token,omitempty"`
	Institutions []domain.Institution `json:"institutions,omitempty"`
	Seen         map[string][]string  `json:"seen_transactions,omitempty"`

	path       string
	passphrase string
	seen       map[string]map[string]bool
}

// DefaultPath is the state file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bankmatch", "state.json"), nil
}

// Load reads the state file, returning zero state if it does not exist yet.
// A non-empty passphrase unseals stored secrets (and seals them on Save).
func Load(path, passphrase string) (*State, error) {
	s := &State{
		path:       path,
		passphrase: passphrase,
		seen:       map[string]map[string]bool{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("state file %s: %w", path, err)
	}

	if s.Secrets.SealedKey != "" {
		if passphrase == "" {
			return nil, fmt.Errorf("state file %s holds sealed secrets but no passphrase is configured", path)
		}
		key, err := crypto.Open(s.Secrets.SealedKey, passphrase)
		if err != nil {
			return nil, fmt.Errorf("unsealing secrets: %w", err)
		}
		s.Secrets.Key = string(key)
		s.Secrets.SealedKey = ""
	}

	for account, ids := range s.Seen {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		s.seen[account] = set
	}

	return s, nil
}

// Save writes the state back atomically, file mode 0600.
func (s *State) Save() error {
	out := *s

	if s.passphrase != "" && s.Secrets.Key != "" {
		sealed, err := crypto.Seal([]byte(s.Secrets.Key), s.passphrase)
		if err != nil {
			return fmt.Errorf("sealing secrets: %w", err)
		}
		out.Secrets.Key = ""
		out.Secrets.SealedKey = sealed
	}

	out.Seen = make(map[string][]string, len(s.seen))
	for account, set := range s.seen {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out.Seen[account] = ids
	}

	data, err := json.MarshalIndent(&out, "", "\t")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MarkSeen records a transaction sighting and reports whether this is the
// first time it has been observed for the account.
func (s *State) MarkSeen(accountID, txID string) bool {
	set, ok := s.seen[accountID]
	if !ok {
		set = map[string]bool{}
		s.seen[accountID] = set
	}
	if set[txID] {
		return false
	}
	set[txID] = true
	return true
}

// HasSecrets reports whether usable credentials are present.
func (s *State) HasSecrets() bool {
	return s.Secrets.ID != "" && s.Secrets.Key != ""
}

// Reset drops everything but the file location.
func (s *State) Reset() {
	s.Secrets = Secrets{}
	s.Token = nil
	s.Institutions = nil
	s.Seen = nil
	s.seen = map[string]map[string]bool{}
}
