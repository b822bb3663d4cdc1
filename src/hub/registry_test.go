package hub

import (
	"testing"

	"github.com/questline/relay/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	s := newFakeSocket("s1")

	prev, err := r.Register("u1", "Aria", s, types.CloseSuperseded, types.ReasonSuperseded)
	require.NoError(t, err)
	assert.Nil(t, prev)

	got, ok := r.Get("u1")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("nobody")
	assert.False(t, ok)
}

func TestRegistrySupersedesPreviousSocket(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSocket("s1")
	s2 := newFakeSocket("s2")

	_, _ = r.Register("u1", "Aria", s1, types.CloseSuperseded, types.ReasonSuperseded)
	prev, err := r.Register("u1", "Aria", s2, types.CloseSuperseded, types.ReasonSuperseded)
	require.NoError(t, err)

	assert.Same(t, s1, prev)
	assert.False(t, s1.IsOpen())
	assert.Equal(t, types.CloseSuperseded, s1.closeCode)
	assert.Equal(t, types.ReasonSuperseded, s1.closeReason)

	got, _ := r.Get("u1")
	assert.Same(t, s2, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRegisterSameSocketDoesNotClose(t *testing.T) {
	r := NewRegistry()
	s := newFakeSocket("s1")

	_, _ = r.Register("u1", "Aria", s, types.CloseSuperseded, types.ReasonSuperseded)
	prev, err := r.Register("u1", "Aria", s, types.CloseSuperseded, types.ReasonSuperseded)
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.True(t, s.IsOpen())
}

func TestRegistryCloseFailureStillRegisters(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSocket("s1")
	s1.closeErr = errCloseFailed
	s2 := newFakeSocket("s2")

	_, _ = r.Register("u1", "Aria", s1, types.CloseSuperseded, types.ReasonSuperseded)
	_, err := r.Register("u1", "Aria", s2, types.CloseSuperseded, types.ReasonSuperseded)
	assert.ErrorIs(t, err, errCloseFailed)

	got, _ := r.Get("u1")
	assert.Same(t, s2, got)
}

func TestRegistryDoesNotCloseDeadPrevious(t *testing.T) {
	r := NewRegistry()
	s1 := newFakeSocket("s1")
	s1.closeErr = errCloseFailed
	_, _ = r.Register("u1", "Aria", s1, types.CloseSuperseded, types.ReasonSuperseded)
	s1.drop()

	_, err := r.Register("u1", "Aria", newFakeSocket("s2"), types.CloseSuperseded, types.ReasonSuperseded)
	assert.NoError(t, err)
	assert.Zero(t, s1.closeCode)
}

func TestRegistryUnregisterMissingIsNoop(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Unregister("ghost"))

	_, _ = r.Register("u1", "Aria", newFakeSocket("s1"), types.CloseSuperseded, types.ReasonSuperseded)
	assert.True(t, r.Unregister("u1"))
	assert.False(t, r.Unregister("u1"))
	assert.Zero(t, r.Len())
}

func TestRegistryOrderAndUsersOf(t *testing.T) {
	r := NewRegistry()
	shared := newFakeSocket("shared")
	_, _ = r.Register("u1", "", newFakeSocket("s1"), types.CloseSuperseded, types.ReasonSuperseded)
	_, _ = r.Register("u2", "", shared, types.CloseSuperseded, types.ReasonSuperseded)
	_, _ = r.Register("u3", "", shared, types.CloseSuperseded, types.ReasonSuperseded)
	_, _ = r.Register("u1", "", newFakeSocket("s1b"), types.CloseSuperseded, types.ReasonSuperseded)

	var order []string
	for _, e := range r.Snapshot() {
		order = append(order, e.UserID)
	}
	assert.Equal(t, []string{"u1", "u2", "u3"}, order)
	assert.Equal(t, []string{"u2", "u3"}, r.UsersOf(shared))
	assert.Empty(t, r.UsersOf(newFakeSocket("other")))

	r.Unregister("u2")
	entry, ok := r.Lookup("u3")
	require.True(t, ok)
	assert.Equal(t, "u3", entry.UserID)
	assert.Len(t, r.Snapshot(), 2)
}
