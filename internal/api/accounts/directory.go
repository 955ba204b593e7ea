// Package accounts is the dev API's user directory and login service. It
// stands in for the real backend so the dashboard client can be exercised
// end to end.
package accounts

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrUserInactive = errors.New("user is inactive")
)

// Account is a staff user plus the secret the directory checks logins against.
type Account struct {
	User         domain.User
	PasswordHash string
}

// Directory is the account storage behind the dev API.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	List(ctx context.Context) ([]domain.User, error)
	// Create assigns the next free ID and returns the stored account.
	Create(ctx context.Context, acc Account) (*Account, error)
}

// MemoryDirectory keeps accounts in a map. IDs are assigned sequentially.
type MemoryDirectory struct {
	mu     sync.RWMutex
	byID   map[int64]Account
	nextID int64
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byID: make(map[int64]Account)}
}

func cloneAccount(a Account) *Account {
	c := a
	c.User = *a.User.Clone()
	return &c
}

func (d *MemoryDirectory) FindByUsername(_ context.Context, username string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.byID {
		if a.User.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrUserNotFound
}

func (d *MemoryDirectory) FindByID(_ context.Context, id int64) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneAccount(a), nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	users := make([]domain.User, 0, len(d.byID))
	for _, a := range d.byID {
		users = append(users, *a.User.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (d *MemoryDirectory) Create(_ context.Context, acc Account) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.byID {
		if a.User.Username == acc.User.Username {
			return nil, ErrUserExists
		}
	}
	d.nextID++
	acc.User.ID = d.nextID
	d.byID[acc.User.ID] = *cloneAccount(acc)
	return cloneAccount(acc), nil
}
