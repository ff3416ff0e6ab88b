package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"sarkar/internal/profile/models"
	"sarkar/pkg/platform/sentinel"
)

// InMemoryStore keeps user documents in a map. Returned documents are copies.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.UserDocument
	clock func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[string]*models.UserDocument),
		clock: time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (*models.UserDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *InMemoryStore) SetPrimaryProfile(_ context.Context, userID string, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(userID).PrimaryProfile = &profile
	return nil
}

func (s *InMemoryStore) AddFamilyMember(_ context.Context, userID string, member models.FamilyMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.getOrCreate(userID)
	doc.FamilyMembers = append(doc.FamilyMembers, member)
	return nil
}

func (s *InMemoryStore) RemoveFamilyMember(_ context.Context, userID, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	for i, m := range doc.FamilyMembers {
		if m.ID == memberID {
			doc.FamilyMembers = append(doc.FamilyMembers[:i:i], doc.FamilyMembers[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) SetDeviceTokens(_ context.Context, userID string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(userID).DeviceTokens = append([]string(nil), tokens...)
	return nil
}

func (s *InMemoryStore) SetNotificationRecord(_ context.Context, userID string, record models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	doc.DeadlineNotifications = make(models.NotificationRecord, len(record))
	for k, v := range record {
		doc.DeadlineNotifications[k] = v
	}
	return nil
}

func (s *InMemoryStore) MarkNotified(_ context.Context, userID, schemeID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if doc.DeadlineNotifications == nil {
		doc.DeadlineNotifications = models.NotificationRecord{}
	}
	doc.DeadlineNotifications[schemeID] = at
	return nil
}

// ListAllUsers returns every document ordered by user ID.
func (s *InMemoryStore) ListAllUsers(_ context.Context) ([]*models.UserDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.UserDocument, 0, len(s.users))
	for _, doc := range s.users {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Put stores a whole document, replacing any existing one. Used for seeding
// legacy documents in tests and local runs.
func (s *InMemoryStore) Put(doc *models.UserDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[doc.UserID] = doc.Clone()
}

// getOrCreate must be called with the write lock held.
func (s *InMemoryStore) getOrCreate(userID string) *models.UserDocument {
	doc, ok := s.users[userID]
	if !ok {
		doc = &models.UserDocument{
			UserID:                userID,
			FamilyMembers:         []models.FamilyMember{},
			DeviceTokens:          []string{},
			DeadlineNotifications: models.NotificationRecord{},
			CreatedAt:             s.clock(),
		}
		s.users[userID] = doc
	}
	return doc
}
