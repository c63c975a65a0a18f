package userapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers GetUser from a map and fails for ids in failIDs.
type stubService struct {
	mu      sync.Mutex
	users   map[int]User
	failIDs map[int]bool
	calls   []int
}

func (s *stubService) ListUsers(context.Context) ([]User, error) { return nil, nil }

func (s *stubService) GetUser(ctx context.Context, id int) (*User, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failIDs[id] {
		return nil, &TransportError{Op: "get user", StatusCode: 404}
	}
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("no user %d", id)
	}
	return &u, nil
}

func (s *stubService) CreateUser(context.Context, User) (*User, error)      { return nil, nil }
func (s *stubService) UpdateUser(context.Context, int, User) (*User, error) { return nil, nil }
func (s *stubService) DeleteUser(context.Context, int) error                { return nil }

func TestFetchMany_PreservesOrder(t *testing.T) {
	svc := &stubService{users: map[int]User{}}
	ids := []int{5, 1, 9, 3, 7, 2}
	for _, id := range ids {
		svc.users[id] = sampleUser(id, fmt.Sprintf("user-%d", id))
	}

	got, err := FetchMany(context.Background(), svc, ids)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, got[i].ID)
	}
}

func TestFetchMany_FirstErrorWins(t *testing.T) {
	svc := &stubService{
		users:   map[int]User{1: sampleUser(1, "Ann")},
		failIDs: map[int]bool{2: true},
	}

	got, err := FetchMany(context.Background(), svc, []int{1, 2})
	require.Error(t, err)
	assert.Nil(t, got)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.NotFound())
}

func TestFetchMany_Empty(t *testing.T) {
	got, err := FetchMany(context.Background(), &stubService{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
