package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

// Memory keeps users in process memory. Unit tests and the httptest
// harness for the client use it in place of Postgres.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, users: map[int64]domain.User{}}
}

func (r *Memory) Create(_ context.Context, u domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return nil, domain.ErrAlreadyExists
		}
	}

	u.ID = r.nextID
	r.nextID++
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = u
	out := u
	return &out, nil
}

func (r *Memory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Memory) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := u
	return &out, nil
}
