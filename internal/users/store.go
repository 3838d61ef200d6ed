package users

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/logging"
)

// Store is the credential store: the whole table lives in memory and is
// written back to the backing JSON file on every mutation. Read or write
// failures are logged and the store keeps operating in memory only; that
// state risks losing data across restarts, so it is logged loudly rather
// than hidden.
type Store struct {
	mu     sync.RWMutex
	path   string
	log    logging.Logger
	users  []*User
	nextID int
	now    func() time.Time
}

// NewStore loads the table from path (creating seed accounts if the table
// is empty) and returns a ready-to-use store.
func NewStore(path string, log logging.Logger) *Store {
	s := &Store{
		path:   path,
		log:    log.With("component", "users"),
		nextID: 1,
		now:    time.Now,
	}
	s.load()
	if len(s.users) == 0 {
		s.seedDefaults()
	}
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error(context.Background(), "reading user table failed, starting empty", "path", s.path, "error", err)
		}
		return
	}

	var table tableData
	if err := json.Unmarshal(data, &table); err != nil {
		s.log.Error(context.Background(), "user table is corrupt, starting empty", "path", s.path, "error", err)
		return
	}

	s.users = table.Users
	if table.NextUserID > 0 {
		s.nextID = table.NextUserID
	}
}

// save writes the whole table back to disk. Failures leave the in-memory
// state authoritative; the error is logged because it means changes will
// not survive a restart.
func (s *Store) save() {
	table := tableData{Users: s.users, NextUserID: s.nextID}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		s.log.Error(context.Background(), "encoding user table failed, operating in memory only", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Error(context.Background(), "writing user table failed, operating in memory only", "path", s.path, "error", err)
	}
}

func (s *Store) seedDefaults() {
	seeds := []struct {
		username, email, password, fullName string
		role                                Role
	}{
		{"admin", "admin@ordermaster.com", "admin123", "System Administrator", RoleAdmin},
		{"manager", "manager@ordermaster.com", "manager123", "Default Manager", RoleManager},
		{"customer", "customer@ordermaster.com", "customer123", "Default Customer", RoleCustomer},
	}

	for _, seed := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			s.log.Error(context.Background(), "hashing seed password failed", "username", seed.username, "error", err)
			continue
		}
		s.users = append(s.users, &User{
			ID:           s.nextID,
			Username:     seed.username,
			Email:        seed.email,
			PasswordHash: string(hash),
			FullName:     seed.fullName,
			Role:         seed.role,
			IsActive:     true,
			CreatedAt:    s.now(),
		})
		s.nextID++
	}

	s.save()
	s.log.Info(context.Background(), "seeded default accounts", "count", len(seeds))
}

// Register adds a new account with the given plaintext password, which is
// bcrypt-hashed before it is stored. Email and username must be unique
// among active accounts, compared case-insensitively. Returns the assigned
// user ID.
func (s *Store) Register(u *User, password string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if !existing.IsActive {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return 0, common.ErrEmailTaken
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return 0, common.ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	record := *u
	record.ID = s.nextID
	record.PasswordHash = string(hash)
	record.IsActive = true
	record.CreatedAt = s.now()
	record.LastLoginAt = nil

	s.users = append(s.users, &record)
	s.nextID++
	s.save()

	return record.ID, nil
}

// Authenticate verifies the password of the active account whose username
// or email matches identifier case-insensitively. On success it stamps
// LastLoginAt and returns a snapshot of the record.
//
// Errors: common.ErrNotFound when no account matches, common.ErrInactive
// when only a deactivated account matches, common.ErrUnauthorized when the
// password is wrong.
func (s *Store) Authenticate(identifier, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *User
	for _, u := range s.users {
		if u.IsActive && matchesIdentifier(u, identifier) {
			match = u
			break
		}
	}
	if match == nil {
		for _, u := range s.users {
			if matchesIdentifier(u, identifier) {
				return nil, common.ErrInactive
			}
		}
		return nil, common.ErrNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(match.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	now := s.now()
	match.LastLoginAt = &now
	s.save()

	return snapshot(match), nil
}

func matchesIdentifier(u *User, identifier string) bool {
	return strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier)
}

// Update merges the mutable fields of u into the existing record with the
// same ID. Reports whether a record was found. The password hash is only
// replaced when u carries a non-empty one.
func (s *Store) Update(u *User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.findByID(u.ID)
	if existing == nil {
		return false
	}

	existing.FullName = u.FullName
	existing.Email = u.Email
	existing.Username = u.Username
	existing.Role = u.Role
	existing.LastLoginAt = u.LastLoginAt
	existing.ProfilePicture = u.ProfilePicture
	if u.PasswordHash != "" {
		existing.PasswordHash = u.PasswordHash
	}

	s.save()
	return true
}

// ChangePassword replaces the stored hash of the given account with a
// bcrypt hash of newPassword. Reports whether the account exists.
func (s *Store) ChangePassword(userID int, newPassword string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.findByID(userID)
	if existing == nil {
		return false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error(context.Background(), "hashing new password failed", "userId", userID, "error", err)
		return false
	}

	existing.PasswordHash = string(hash)
	s.save()
	return true
}

// Deactivate soft-deletes the account. The record stays on disk so its
// user ID is never reassigned.
func (s *Store) Deactivate(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.findByID(userID)
	if existing == nil {
		return false
	}

	existing.IsActive = false
	s.save()
	return true
}

func (s *Store) findByID(userID int) *User {
	for _, u := range s.users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}

// FindByID returns the active account with the given ID, or nil.
func (s *Store) FindByID(userID int) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findByID(userID)
	if u == nil || !u.IsActive {
		return nil
	}
	return snapshot(u)
}

// FindByEmail returns the active account with the given email, or nil.
func (s *Store) FindByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.IsActive && strings.EqualFold(u.Email, email) {
			return snapshot(u)
		}
	}
	return nil
}

// FindByUsername returns the active account with the given username, or nil.
func (s *Store) FindByUsername(username string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.IsActive && strings.EqualFold(u.Username, username) {
			return snapshot(u)
		}
	}
	return nil
}

// ListActive returns snapshots of all active accounts.
func (s *Store) ListActive() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, u := range s.users {
		if u.IsActive {
			out = append(out, snapshot(u))
		}
	}
	return out
}

// Search returns active accounts whose full name, email, or username
// contains term, case-insensitively. A blank term returns all active
// accounts.
func (s *Store) Search(term string) []*User {
	if strings.TrimSpace(term) == "" {
		return s.ListActive()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	var out []*User
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(u.FullName), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) ||
			strings.Contains(strings.ToLower(u.Username), needle) {
			out = append(out, snapshot(u))
		}
	}
	return out
}

// ListByRole returns active accounts holding the given role.
func (s *Store) ListByRole(role Role) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, u := range s.users {
		if u.IsActive && strings.EqualFold(string(u.Role), string(role)) {
			out = append(out, snapshot(u))
		}
	}
	return out
}

// Statistics returns aggregate counts over active accounts, keyed the way
// the dashboard consumed them.
func (s *Store) Statistics() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	stats := map[string]int{
		"TotalUsers":        0,
		"Admins":            0,
		"Managers":          0,
		"Customers":         0,
		"NewUsersThisMonth": 0,
		"ActiveToday":       0,
	}

	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		stats["TotalUsers"]++
		switch u.Role {
		case RoleAdmin:
			stats["Admins"]++
		case RoleManager:
			stats["Managers"]++
		case RoleCustomer:
			stats["Customers"]++
		}
		if u.CreatedAt.Month() == now.Month() && u.CreatedAt.Year() == now.Year() {
			stats["NewUsersThisMonth"]++
		}
		if u.LastLoginAt != nil && sameDay(*u.LastLoginAt, now) {
			stats["ActiveToday"]++
		}
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GenerateUsername derives a free username from the full name (or, failing
// that, the local part of the email), appending a numeric suffix on
// collision.
func (s *Store) GenerateUsername(fullName, email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var base string
	if strings.TrimSpace(fullName) != "" {
		base = strings.ToLower(strings.ReplaceAll(fullName, " ", ""))
	} else {
		base = strings.ToLower(strings.SplitN(email, "@", 2)[0])
	}

	username := base
	for counter := 1; s.usernameTaken(username); counter++ {
		username = fmt.Sprintf("%s%d", base, counter)
	}
	return username
}

func (s *Store) usernameTaken(username string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

// Clear drops every record and resets ID assignment. Intended for admin
// tooling and tests.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = nil
	s.nextID = 1
	s.save()
}

func snapshot(u *User) *User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
