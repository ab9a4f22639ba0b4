package repository

import (
	"context"
	"sync"
	"time"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
)

// MemoryUsersRepo in-memory 用户仓储
type MemoryUsersRepo struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{users: map[string]domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

func (r *MemoryUsersRepo) AddUser(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.UserID] = user
	return user
}

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
