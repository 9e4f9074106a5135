package user

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests and local development.
// A single mutex gives it the same atomicity guarantees the mongo
// implementation gets from single-document updates.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User // keyed by email
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) FindBySubscriptionID(_ context.Context, subscriptionID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.findBySubID(subscriptionID); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) findBySubID(subscriptionID string) *User {
	if subscriptionID == "" {
		return nil
	}
	for _, u := range s.users {
		if u.Entitlement.SubscriptionID == subscriptionID {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) Insert(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Email]; ok {
		return ErrDuplicateEmail
	}
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *MemoryStore) UpdateEntitlement(_ context.Context, email string, ent Entitlement, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return false, nil
	}
	s.applyEntitlement(u, ent, now)
	return true, nil
}

func (s *MemoryStore) UpdateEntitlementBySubscriptionID(_ context.Context, subscriptionID string, ent Entitlement, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findBySubID(subscriptionID)
	if u == nil {
		return false, nil
	}
	s.applyEntitlement(u, ent, now)
	return true, nil
}

func (s *MemoryStore) applyEntitlement(u *User, ent Entitlement, now time.Time) {
	u.Entitlement.PlanType = ent.PlanType
	u.Entitlement.IsPro = ent.IsPro
	if ent.SubscriptionID != "" {
		u.Entitlement.SubscriptionID = ent.SubscriptionID
	}
	u.UpdatedAt = now
}

func (s *MemoryStore) RecordLogin(_ context.Context, email, localAuthID, displayName, photo string, now time.Time) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	if localAuthID != "" && u.LocalAuthID == nil {
		id := localAuthID
		u.LocalAuthID = &id
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	if photo != "" {
		u.Photo = photo
	}
	t := now
	u.LastLogin = &t
	u.UpdatedAt = now

	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SetHomeAddress(_ context.Context, email string, addr *Address, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return false, nil
	}
	u.HomeAddress = addr
	u.UpdatedAt = now
	return true, nil
}

func (s *MemoryStore) IncrementStats(_ context.Context, email string, delivered bool, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return false, nil
	}
	if delivered {
		u.Stats.Delivered++
	} else {
		u.Stats.Failed++
	}
	u.UpdatedAt = now
	return true, nil
}

func (s *MemoryStore) ResetQuota(_ context.Context, email string, dayStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil
	}
	if u.Quota.LastUseDate != nil && u.Quota.LastUseDate.Before(dayStart) {
		u.Quota.DailyUseCount = 0
	}
	return nil
}

func (s *MemoryStore) ConsumeQuota(_ context.Context, email string, limit int, now time.Time) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok || u.Quota.DailyUseCount >= limit {
		return 0, false, nil
	}
	u.Quota.DailyUseCount++
	t := now
	u.Quota.LastUseDate = &t
	u.UpdatedAt = now
	return u.Quota.DailyUseCount, true, nil
}

var _ Store = (*MemoryStore)(nil)
