package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmptyUsername      = errors.New("username must not be empty")
)

const minPasswordLength = 8

// storedUser is the on-disk record shape. Password hashes never leave
// this package.
type storedUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// FileStore keeps user credentials in a single JSON file. A flat file is
// the system of record here: the user population is a handful of dashboard
// operators, and keeping credentials out of the session database simplifies
// backup. All mutations rewrite the file atomically via a rename.
type FileStore struct {
	path       string
	bcryptCost int

	mu    sync.RWMutex
	users map[string]storedUser
}

// NewFileStore loads (or initializes) the credential file at path.
func NewFileStore(path string, bcryptCost int) (*FileStore, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	s := &FileStore{
		path:       path,
		bcryptCost: bcryptCost,
		users:      make(map[string]storedUser),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load user store: %w", err)
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.users)
}

// persist writes the full user map to a temp file and renames it into
// place, so a crash mid-write never truncates the store.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Register creates a new user with a bcrypt-hashed password.
func (s *FileStore) Register(username, password string) (*models.User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := storedUser{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[username] = user

	if err := s.persist(); err != nil {
		delete(s.users, username)
		return nil, fmt.Errorf("failed to persist user store: %w", err)
	}

	return toModel(user), nil
}

// Authenticate verifies a username/password pair. Lookup failures and hash
// mismatches return the same error so callers cannot probe for usernames.
func (s *FileStore) Authenticate(username, password string) (*models.User, error) {
	s.mu.RLock()
	user, exists := s.users[username]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return toModel(user), nil
}

// Get returns a user by username.
func (s *FileStore) Get(username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[username]
	if !exists {
		return nil, ErrUserNotFound
	}
	return toModel(user), nil
}

// Count returns the number of registered users.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func toModel(u storedUser) *models.User {
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}
