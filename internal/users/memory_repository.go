package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository stores users in an in-process map, ideal for local development or tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	data    map[uuid.UUID]User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID
}

// NewInMemoryRepository constructs a repository seeded with optional initial users.
func NewInMemoryRepository(initial []User) *InMemoryRepository {
	data := make(map[uuid.UUID]User)
	byEmail := make(map[string]uuid.UUID)
	order := make([]uuid.UUID, 0, len(initial))
	for _, user := range initial {
		data[user.ID] = user
		byEmail[user.Email] = user.ID
		order = append(order, user.ID)
	}
	return &InMemoryRepository{data: data, byEmail: byEmail, order: order}
}

// Create stores a new user, enforcing email uniqueness like the schema constraint.
func (r *InMemoryRepository) Create(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return User{}, ErrDuplicateEmail
	}

	r.data[user.ID] = user
	r.byEmail[user.Email] = user.ID
	r.order = append(r.order, user.ID)
	return user, nil
}

// FindByEmail returns the user with the given email, or nil.
func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	user := r.data[id]
	return &user, nil
}

// FindByGoogleID returns the user with the given Google subject id, or nil.
func (r *InMemoryRepository) FindByGoogleID(_ context.Context, googleID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if googleID == "" {
		return nil, nil
	}
	for _, id := range r.order {
		if user, ok := r.data[id]; ok && user.GoogleID == googleID {
			userCopy := user
			return &userCopy, nil
		}
	}
	return nil, nil
}

// List returns a page of users in insertion order.
func (r *InMemoryRepository) List(_ context.Context, limit, offset int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) {
		return []User{}, nil
	}

	end := offset + limit
	if end > len(r.order) {
		end = len(r.order)
	}

	out := make([]User, 0, end-offset)
	for _, id := range r.order[offset:end] {
		if user, ok := r.data[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

// Count returns the total number of stored users.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order), nil
}
