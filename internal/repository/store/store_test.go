package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chemlab-cloud/chemsearch/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Config{InMemory: true, KeyPrefix: "test"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SetJSON("doc", payload{Name: "glucose", Count: 3}))

	var got payload
	require.NoError(t, st.GetJSON("doc", &got))
	assert.Equal(t, payload{Name: "glucose", Count: 3}, got)
}

func TestGetMissingKey(t *testing.T) {
	st := newTestStore(t)

	var got payload
	err := st.GetJSON("absent", &got)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOverwrite(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SetJSON("doc", payload{Name: "v1"}))
	require.NoError(t, st.SetJSON("doc", payload{Name: "v2"}))

	var got payload
	require.NoError(t, st.GetJSON("doc", &got))
	assert.Equal(t, "v2", got.Name)
}

func TestDelete(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.SetJSON("doc", payload{Name: "v1"}))
	require.NoError(t, st.Delete("doc"))

	var got payload
	assert.True(t, errors.Is(st.GetJSON("doc", &got), domain.ErrNotFound))

	// Deleting a missing key is fine.
	assert.NoError(t, st.Delete("doc"))
}

func TestKeyPrefixIsolation(t *testing.T) {
	a, err := Open(Config{InMemory: true, KeyPrefix: "a"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.SetJSON("doc", payload{Name: "scoped"}))
	assert.Equal(t, []byte("a:doc"), a.makeKey("doc"))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{}, zap.NewNop())
	assert.Error(t, err)
}
