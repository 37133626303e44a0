package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUpdate(t *testing.T) {
	st := NewStore[string]()
	id := uuid.New()

	assert.Equal(t, PageUpload, st.Get(id).Page())

	next, err := st.Update(id, func(s State) (State, error) {
		return s.DocumentsReady([]string{"x"})
	})
	require.NoError(t, err)
	assert.Equal(t, PageMenu, next.Page())
	assert.Equal(t, PageMenu, st.Get(id).Page())

	boom := errors.New("boom")
	got, err := st.Update(id, func(s State) (State, error) { return New(), boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, PageMenu, got.Page())
	assert.Equal(t, PageMenu, st.Get(id).Page())
}

func TestStoreWorkspace(t *testing.T) {
	st := NewStore[string]()
	id := uuid.New()

	_, ok := st.Workspace(id)
	assert.False(t, ok)

	st.SetWorkspace(id, "index")
	w, ok := st.Workspace(id)
	assert.True(t, ok)
	assert.Equal(t, "index", w)

	st.Delete(id)
	_, ok = st.Workspace(id)
	assert.False(t, ok)
}

func TestStoreSweep(t *testing.T) {
	st := NewStore[int]()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	old, fresh := uuid.New(), uuid.New()
	st.Get(old)
	now = now.Add(2 * time.Hour)
	st.Get(fresh)

	assert.Equal(t, 1, st.Sweep(time.Hour))
	assert.Equal(t, 1, st.Len())
}
