// Package store implements the device-local keyed persistent store: a
// synchronous JSON key/value file used as the offline cache and as the only
// backing store when no cloud sync applies.
//
// Corruption is never fatal. An unreadable file or an undecodable entry is
// treated exactly like an absent one, so callers always fall back to their
// own default value.
package store

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// KV is a file-backed key/value store. All entries live in one JSON file
// that is rewritten atomically on every Set. A KV opened with an empty path
// keeps its entries in memory only.
type KV struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// Open loads the store file at path, creating parent directories as needed.
// A missing or unparseable file yields an empty store.
func Open(path string) *KV {
	kv := &KV{path: path, data: make(map[string]json.RawMessage)}
	if path == "" {
		return kv
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		// Absent file is the normal first-run case; anything else is still
		// only worth a log line, never an error.
		if !os.IsNotExist(err) {
			log.Printf("store: read %s: %v", path, err)
		}
		return kv
	}
	if err := json.Unmarshal(raw, &kv.data); err != nil {
		log.Printf("store: %s is not valid JSON, starting empty: %v", path, err)
		kv.data = make(map[string]json.RawMessage)
	}
	return kv
}

// NewMemory returns a KV with no backing file, for tests and ephemeral use.
func NewMemory() *KV {
	return &KV{data: make(map[string]json.RawMessage)}
}

// GetRaw returns the stored raw JSON for key. The second return value is
// false when the key is absent.
func (s *KV) GetRaw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[key]
	if !ok {
		return nil, false
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp, true
}

// Get decodes the entry for key into out. It returns false when the key is
// absent or the stored value cannot be decoded into out; in both cases out
// is left untouched, so callers can pre-fill it with their default.
func (s *KV) Get(key string, out any) bool {
	raw, ok := s.GetRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("store: entry %q is undecodable, using default: %v", key, err)
		return false
	}
	return true
}

// SetRaw stores raw JSON under key and flushes the file.
func (s *KV) SetRaw(key string, raw json.RawMessage) {
	s.mu.Lock()
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	s.data[key] = cp
	s.flushLocked()
	s.mu.Unlock()
}

// Set encodes v as JSON, stores it under key and flushes the file.
func (s *KV) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.SetRaw(key, raw)
	return nil
}

// Delete removes key and flushes the file. Deleting an absent key is a no-op.
func (s *KV) Delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.flushLocked()
	s.mu.Unlock()
}

// flushLocked rewrites the backing file via a temp file and rename, so a
// crash mid-write can never corrupt the previous contents.
// The caller must hold s.mu.
func (s *KV) flushLocked() {
	if s.path == "" {
		return
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		log.Printf("store: marshal for %s: %v", s.path, err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("store: mkdir for %s: %v", s.path, err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		log.Printf("store: write %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.Printf("store: rename %s: %v", tmp, err)
	}
}
