package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-chat-auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) LookupByEmail(ctx context.Context, email string) ([]*auth.User, error) {
	args := m.Called(ctx, email)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

func (m *MockCredentialStore) InsertIfAbsent(ctx context.Context, user *auth.User) (*auth.User, bool, error) {
	args := m.Called(ctx, user)
	stored, _ := args.Get(0).(*auth.User)
	return stored, args.Bool(1), args.Error(2)
}

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	aud, _ := args.Get(0).([]string)
	return aud
}

func (m *MockConfig) GetBcryptCost() int {
	args := m.Called()
	return args.Int(0)
}

const testSigningKey = "test-signing-key-that-is-long-enough-32"

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return(testSigningKey)
	mockConfig.On("GetTokenExpiration").Return(24 * time.Hour)
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	mockConfig.On("GetBcryptCost").Return(bcrypt.MinCost)
	return mockConfig
}

func newSnapshot(t *testing.T) *auth.Snapshot {
	t.Helper()
	snapshot, err := auth.NewSnapshot(newMockConfig())
	require.NoError(t, err)
	return snapshot
}

// countingComparer records every comparison and delegates to bcrypt.
type countingComparer struct {
	mu     sync.Mutex
	hashes []string
}

func (c *countingComparer) Compare(password, hash string) bool {
	c.mu.Lock()
	c.hashes = append(c.hashes, hash)
	c.mu.Unlock()
	return auth.BcryptComparer{}.Compare(password, hash)
}

func (c *countingComparer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hashes)
}

func (c *countingComparer) Hashes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.hashes))
	copy(out, c.hashes)
	return out
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

// recordingSink collects activity events
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}
