package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SergeiKhy/shortlink/internal/models"
	"github.com/SergeiKhy/shortlink/internal/repository"
)

// MockKeyValueStore implements repository.KeyValueStore for testing.
// TTLs are honored lazily: expired entries report ErrKeyNotFound on read.
type MockKeyValueStore struct {
	mu      sync.RWMutex
	values  map[string]string
	expiry  map[string]time.Time
	PutErr  error // when set, Put fails with this error
	GetErr  error // when set, Get fails with this error
	ListErr error // when set, ListKeys fails with this error
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{
		values: make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	val, exists := m.values[key]
	if !exists {
		return "", repository.ErrKeyNotFound
	}
	if deadline, ok := m.expiry[key]; ok && !deadline.After(time.Now()) {
		return "", repository.ErrKeyNotFound
	}
	return val, nil
}

func (m *MockKeyValueStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.PutErr != nil {
		return m.PutErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	if ttl > 0 {
		m.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(m.expiry, key)
	}
	return nil
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	delete(m.expiry, key)
	return nil
}

func (m *MockKeyValueStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	now := time.Now()
	for key := range m.values {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if deadline, ok := m.expiry[key]; ok && !deadline.After(now) {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Has reports whether a raw key is present, ignoring TTL. Used to assert
// that lazily expired records were actually deleted, not just hidden.
func (m *MockKeyValueStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.values[key]
	return exists
}

// MockClickRepository implements repository.ClickRepository for testing.
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks []*models.Click

	// canned aggregate results
	DailyRows []models.LinkDailyClicks
	Total     int64

	// call counters for asserting short-circuit behavior
	PerLinkCalls int
	TotalCalls   int
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, click)
	return nil
}

func (m *MockClickRepository) PerLinkDaily(ctx context.Context, linkID string, start, end time.Time) ([]models.LinkDailyClicks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PerLinkCalls++
	return m.DailyRows, nil
}

func (m *MockClickRepository) TotalClicks(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalCalls++
	return m.Total, nil
}

// Recorded returns a copy of all recorded clicks.
func (m *MockClickRepository) Recorded() []*models.Click {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Click, len(m.clicks))
	copy(out, m.clicks)
	return out
}

// MockIdentityProvider implements service.IdentityProvider for testing.
type MockIdentityProvider struct {
	Credential string
	Account    string
	Err        error
}

func (m *MockIdentityProvider) Authenticate(ctx context.Context, code string) (string, string, error) {
	if m.Err != nil {
		return "", "", m.Err
	}
	return m.Credential, m.Account, nil
}
