// Package exclusions persists the set of packages the user chose to skip.
//
// The store is a JSON array whose items are either plain package names or
// snapshot objects of a package record. Membership is decided by name. Every
// mutation rewrites the whole file; items read from the file are written back
// byte-for-byte in content, including items that name no package.
package exclusions

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ajxudir/appupdate/pkg/packages"
	"github.com/ajxudir/appupdate/pkg/verbose"
	"github.com/iancoleman/orderedmap"
)

// Entry is one stored exclusion: a bare name, a record snapshot, or an
// item read from the file that names no package.
type Entry struct {
	name     string
	snapshot *orderedmap.OrderedMap

	// raw is the item as read from the file; nil for entries added at runtime.
	raw json.RawMessage
}

// Name returns the package name the entry excludes, empty for an item
// that names no package.
func (e Entry) Name() string {
	return e.name
}

// Snapshot returns the stored record object, or nil for a bare name entry.
func (e Entry) Snapshot() *orderedmap.OrderedMap {
	return e.snapshot
}

// value is what gets encoded back into the file.
func (e Entry) value() any {
	if e.raw != nil {
		return e.raw
	}
	if e.snapshot != nil {
		return e.snapshot
	}
	return e.name
}

// Store is the in-memory view of the exclusion file. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries []Entry

	// unreadable is set when the file exists but is not a JSON array.
	// Mutations are refused so the file is never overwritten.
	unreadable error
}

var _ packages.Excluder = (*Store)(nil)

// Variables for dependency injection in tests.
var (
	readFileFunc  = os.ReadFile
	writeFileFunc = writeFileAtomic
)

// Load reads the store at path.
//
// A missing file yields an empty store. A file that is not a JSON array
// also yields an empty store with a warning; such a store refuses every
// mutation, so the file is never overwritten.
//
// Parameters:
//   - path: Location of the exclusion file
//
// Returns:
//   - *Store: Loaded store
//   - error: When the file exists but cannot be read
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := readFileFunc(path)
	if errors.Is(err, fs.ErrNotExist) {
		verbose.Debugf("No exclusion file at %s", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusions: %w", err)
	}

	entries, err := decode(data)
	if err != nil {
		verbose.Warnf("ignoring unreadable exclusion file %s: %v", path, err)
		s.unreadable = fmt.Errorf("exclusion file %s is not a JSON array (%v); fix or remove it before changing exclusions", path, err)
		return s, nil
	}
	s.entries = entries
	verbose.Debugf("Loaded %d exclusions from %s", len(entries), path)
	return s, nil
}

// decode parses the file contents into entries. Every item keeps its raw
// bytes. Items that are neither a non-blank string nor an object with a
// string "name" become entries without a name.
func decode(data []byte) ([]Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for i, raw := range items {
		e := Entry{raw: raw}

		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			e.name = strings.TrimSpace(name)
			if e.name == "" {
				verbose.Warnf("exclusion item %d has an empty name; keeping it as is", i)
			}
			entries = append(entries, e)
			continue
		}

		obj := orderedmap.New()
		if err := json.Unmarshal(raw, obj); err != nil {
			verbose.Warnf("exclusion item %d is not a name or object; keeping it as is", i)
			entries = append(entries, e)
			continue
		}
		v, _ := obj.Get("name")
		name, _ = v.(string)
		if e.name = strings.TrimSpace(name); e.name == "" {
			verbose.Warnf("exclusion item %d has no name; keeping it as is", i)
			entries = append(entries, e)
			continue
		}
		disableOrderedMapEscape(obj)
		e.snapshot = obj
		entries = append(entries, e)
	}
	return entries, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Contains reports whether name is excluded.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(name) >= 0
}

// Names returns the excluded names in file order. Items that name no
// package are left out.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.name != "" {
			names = append(names, e.name)
		}
	}
	return names
}

// Entries returns a copy of the stored entries in file order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

// Add excludes a package by name and saves the store.
//
// Parameters:
//   - name: Package name; surrounding whitespace is ignored
//
// Returns:
//   - bool: false when the name was already excluded (nothing is written)
//   - error: When the name is empty or the file cannot be written
func (s *Store) Add(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("exclusion name is empty")
	}
	return s.add(Entry{name: name})
}

// AddRecord excludes a record, storing its snapshot, and saves the store.
//
// Returns false when the record's name was already excluded.
func (s *Store) AddRecord(rec packages.Record) (bool, error) {
	if !rec.Actionable() {
		return false, fmt.Errorf("exclusion name is empty")
	}
	return s.add(Entry{name: strings.TrimSpace(rec.Name), snapshot: rec.Snapshot()})
}

func (s *Store) add(e Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unreadable != nil {
		return false, s.unreadable
	}
	if s.indexOf(e.name) >= 0 {
		return false, nil
	}
	s.entries = append(s.entries, e)
	if err := s.save(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return false, err
	}
	return true, nil
}

// Remove restores a package by name and saves the store.
//
// Returns false when the name was not excluded (nothing is written).
func (s *Store) Remove(name string) (bool, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unreadable != nil {
		return false, s.unreadable
	}
	i := s.indexOf(name)
	if i < 0 {
		return false, nil
	}
	previous := s.entries
	s.entries = append(append([]Entry(nil), s.entries[:i]...), s.entries[i+1:]...)
	if err := s.save(); err != nil {
		s.entries = previous
		return false, err
	}
	return true, nil
}

// indexOf finds name among the entries. Callers hold the lock.
func (s *Store) indexOf(name string) int {
	if name == "" {
		return -1
	}
	for i, e := range s.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// save rewrites the whole file. Callers hold the write lock.
func (s *Store) save() error {
	values := make([]any, len(s.entries))
	for i, e := range s.entries {
		values[i] = e.value()
	}
	data, err := marshalJSON(values)
	if err != nil {
		return fmt.Errorf("failed to encode exclusions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create exclusions directory: %w", err)
	}
	if err := writeFileFunc(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save exclusions: %w", err)
	}
	verbose.Debugf("Saved %d exclusions to %s", len(s.entries), s.path)
	return nil
}

// marshalJSON encodes data with 4-space indentation and no HTML escaping.
func marshalJSON(data any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// disableOrderedMapEscape turns off HTML escaping on m and every nested map.
func disableOrderedMapEscape(m *orderedmap.OrderedMap) {
	m.SetEscapeHTML(false)
	for _, key := range m.Keys() {
		val, _ := m.Get(key)
		m.Set(key, normalizeOrderedMapEscaping(val))
	}
}

// normalizeOrderedMapEscaping converts decoded nested maps to pointers so
// the escaping flag sticks when they are encoded again.
func normalizeOrderedMapEscaping(val any) any {
	switch v := val.(type) {
	case *orderedmap.OrderedMap:
		disableOrderedMapEscape(v)
		return v
	case orderedmap.OrderedMap:
		copy := v
		disableOrderedMapEscape(&copy)
		return &copy
	case []any:
		for i, item := range v {
			v[i] = normalizeOrderedMapEscaping(item)
		}
		return v
	default:
		return val
	}
}

// writeFileAtomic writes content to a temporary file next to path and
// renames it over path.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tempPath := path + tempSuffix()
	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			verbose.Warnf("failed to clean up temp file %s: %v", tempPath, removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func tempSuffix() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return ".tmp"
	}
	return "." + hex.EncodeToString(b) + ".tmp"
}
