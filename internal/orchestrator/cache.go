package orchestrator

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FlagCache persists per-question participant flags to a local JSON file. It
// is advisory: the service's stored rows stay authoritative, the cache only
// lets a restarted client skip already-seen feedback before its first poll
// round-trip completes.
type FlagCache struct {
	path  string
	flags map[string]QuestionFlags
}

type QuestionFlags struct {
	Submitted  bool `json:"submitted"`
	ResultSeen bool `json:"resultSeen"`
}

// OpenFlagCache loads the file at path, tolerating absence and corruption:
// either yields an empty cache, since every flag is re-derivable from the
// service.
func OpenFlagCache(path string) (*FlagCache, error) {
	c := &FlagCache{path: path, flags: make(map[string]QuestionFlags)}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.flags); err != nil {
		c.flags = make(map[string]QuestionFlags)
	}
	return c, nil
}

func (c *FlagCache) Get(questionID string) QuestionFlags {
	return c.flags[questionID]
}

// Set records flags for a question and writes the file. Write failures are
// returned but safe to ignore.
func (c *FlagCache) Set(questionID string, flags QuestionFlags) error {
	c.flags[questionID] = flags
	data, err := json.MarshalIndent(c.flags, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(c.path, data, 0o644)
}
