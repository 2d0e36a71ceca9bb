// Package file implements ports.Store as JSON documents in a data directory.
// Each document has its own lock file. Writes go to a temporary file that is
// renamed into place while that lock is held exclusively, so readers in this
// or another process never observe a half-written file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/onduty/roster/internal/core/domain"
)

const (
	usersFile    = "users.json"
	requestsFile = "requests.json"

	lockRetryDelay = 25 * time.Millisecond
)

// Store implements ports.Store.
type Store struct {
	dir   string
	locks map[string]*fileLock
}

// fileLock guards one document. A flock.Flock skips the OS call when the
// same handle already holds the lock, so mu keeps goroutines of this
// process from sharing it.
type fileLock struct {
	mu    sync.Mutex
	flock *flock.Flock
}

// Open prepares dir for use, creating it when missing.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	s := &Store{dir: dir, locks: make(map[string]*fileLock, 2)}
	for _, name := range []string{usersFile, requestsFile} {
		s.locks[name] = &fileLock{flock: flock.New(lockPath(dir, name))}
	}
	return s, nil
}

// lockPath is the lock file guarding the document name in dir.
func lockPath(dir, name string) string {
	return filepath.Join(dir, "."+name+".lock")
}

// userRecord keeps the password hash, which domain.User hides from JSON.
type userRecord struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (s *Store) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var records []userRecord
	if err := s.read(ctx, usersFile, &records); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, domain.User{
			ID:           r.ID,
			Name:         r.Name,
			Email:        r.Email,
			PasswordHash: r.PasswordHash,
			Role:         r.Role,
			CreatedAt:    r.CreatedAt,
		})
	}
	return users, nil
}

func (s *Store) SaveUsers(ctx context.Context, users []domain.User) error {
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		records = append(records, userRecord{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			CreatedAt:    u.CreatedAt,
		})
	}
	return s.write(ctx, usersFile, records)
}

func (s *Store) LoadRequests(ctx context.Context) ([]domain.DutyRequest, error) {
	var reqs []domain.DutyRequest
	if err := s.read(ctx, requestsFile, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) SaveRequests(ctx context.Context, reqs []domain.DutyRequest) error {
	if reqs == nil {
		reqs = []domain.DutyRequest{}
	}
	return s.write(ctx, requestsFile, reqs)
}

// read decodes name into v. A missing file leaves v untouched.
func (s *Store) read(ctx context.Context, name string, v any) error {
	l := s.locks[name]
	l.mu.Lock()
	defer l.mu.Unlock()

	locked, err := l.flock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("file store: lock %s for read: %w", name, lockErr(err))
	}
	defer l.flock.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("file store: read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("file store: decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode %s: %w", name, err)
	}

	l := s.locks[name]
	l.mu.Lock()
	defer l.mu.Unlock()

	locked, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return fmt.Errorf("file store: lock %s for write: %w", name, lockErr(err))
	}
	defer l.flock.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("file store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("file store: replace %s: %w", name, err)
	}
	return nil
}

func lockErr(err error) error {
	if err != nil {
		return err
	}
	return errors.New("lock not acquired")
}
