package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var _ Store = (*FileStore)(nil)

// fileContents is the on-disk layout. Exactly one of Values or Sealed is set.
type fileContents struct {
	Values map[string]string `json:"values,omitempty"`
	Sealed *sealedPayload    `json:"sealed,omitempty"`
}

// FileStore keeps credentials in a JSON file shared by every process of the same user.
// Writes replace the file atomically; changes made by other processes are picked up
// through a directory watch and published as External events.
type FileStore struct {
	path   string
	sealer *sealer

	mu     sync.RWMutex
	writeM sync.Mutex
	values map[string]string

	events  *broadcaster
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	closeM  sync.Once
}

type FileStoreOption func(*FileStore)

// WithPassphrase encrypts the file at rest with a key derived from passphrase.
func WithPassphrase(passphrase string) FileStoreOption {
	return func(s *FileStore) {
		if passphrase != "" {
			s.sealer = newSealer(passphrase)
		}
	}
}

// NewFileStore opens (or prepares) the credential file at path and starts watching it.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	s := &FileStore{
		path:   filepath.Clean(path),
		values: make(map[string]string),
		events: newBroadcaster(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create credentials directory")
	}

	values, err := s.readFile()
	if err != nil {
		return nil, err
	}
	s.values = values

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create watcher")
	}
	// The directory is watched rather than the file so that atomic renames are seen.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrap(err, "[NewFileStore] watch credentials directory")
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.watch()

	return s, nil
}

// Path returns the credential file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	return s.apply(func(values map[string]string) []ChangeEvent {
		values[key] = value
		return []ChangeEvent{{Key: key, Value: value}}
	})
}

func (s *FileStore) Remove(key string) error {
	return s.apply(func(values map[string]string) []ChangeEvent {
		if _, ok := values[key]; !ok {
			return nil
		}
		delete(values, key)
		return []ChangeEvent{{Key: key, Removed: true}}
	})
}

func (s *FileStore) SetSession(set CredentialSet) error {
	encoded, err := encodeSession(set)
	if err != nil {
		return err
	}
	return s.apply(func(values map[string]string) []ChangeEvent {
		events := make([]ChangeEvent, 0, len(SessionKeys))
		for _, k := range SessionKeys {
			values[k] = encoded[k]
			events = append(events, ChangeEvent{Key: k, Value: encoded[k]})
		}
		return events
	})
}

func (s *FileStore) ClearSession() error {
	return s.apply(func(values map[string]string) []ChangeEvent {
		var events []ChangeEvent
		for _, k := range SessionKeys {
			if _, ok := values[k]; ok {
				delete(values, k)
				events = append(events, ChangeEvent{Key: k, Removed: true})
			}
		}
		return events
	})
}

func (s *FileStore) Subscribe() (<-chan ChangeEvent, func()) {
	return s.events.subscribe()
}

// Close stops the watcher and closes all subscriber channels.
func (s *FileStore) Close() error {
	var err error
	s.closeM.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
		s.events.close()
	})
	return err
}

// apply mutates a copy of the cached values, persists it and publishes the events the
// mutation produced. Nothing is published when the write fails.
func (s *FileStore) apply(mutate func(map[string]string) []ChangeEvent) error {
	s.writeM.Lock()
	defer s.writeM.Unlock()

	s.mu.RLock()
	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		next[k] = v
	}
	s.mu.RUnlock()

	events := mutate(next)
	if len(events) == 0 {
		return nil
	}
	if err := s.writeFile(next); err != nil {
		return err
	}

	s.mu.Lock()
	s.values = next
	s.mu.Unlock()

	s.events.publish(events...)
	return nil
}

func (s *FileStore) writeFile(values map[string]string) error {
	contents := fileContents{Values: values}
	if s.sealer != nil {
		plain, err := json.Marshal(values)
		if err != nil {
			return errors.Wrap(err, "[FileStore.writeFile] marshal values")
		}
		sealed, err := s.sealer.seal(plain)
		if err != nil {
			return err
		}
		contents = fileContents{Sealed: sealed}
	}

	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.writeFile] marshal file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileStore.writeFile] create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op once renamed

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "[FileStore.writeFile] chmod temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "[FileStore.writeFile] write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "[FileStore.writeFile] sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore.writeFile] close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "[FileStore.writeFile] replace credentials file")
	}
	return nil
}

func (s *FileStore) readFile() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStore.readFile] read credentials file")
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, err.Error())
	}

	if contents.Sealed != nil {
		if s.sealer == nil {
			return nil, apperrors.ErrPassphraseRequired
		}
		plain, err := s.sealer.open(contents.Sealed)
		if err != nil {
			return nil, err
		}
		values := map[string]string{}
		if err := json.Unmarshal(plain, &values); err != nil {
			return nil, errors.Wrap(apperrors.ErrCredentialsCorrupted, err.Error())
		}
		return values, nil
	}

	if contents.Values == nil {
		return map[string]string{}, nil
	}
	return contents.Values, nil
}

func (s *FileStore) watch() {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Err(err).Str("path", s.path).Msg("credentials watcher error")
		case <-s.done:
			return
		}
	}
}

// reload re-reads the file and publishes the difference against the cached view.
// Our own writes produce no difference and therefore no events.
func (s *FileStore) reload() {
	s.writeM.Lock()
	defer s.writeM.Unlock()

	values, err := s.readFile()
	if err != nil {
		log.Err(err).Str("path", s.path).Msg("unable to reload credentials file")
		return
	}

	s.mu.Lock()
	events := diff(s.values, values)
	s.values = values
	s.mu.Unlock()

	s.events.publish(events...)
}

func diff(before, after map[string]string) []ChangeEvent {
	var events []ChangeEvent
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			events = append(events, ChangeEvent{Key: k, Value: v, External: true})
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			events = append(events, ChangeEvent{Key: k, Removed: true, External: true})
		}
	}
	return events
}
