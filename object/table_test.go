package object

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableSetGet(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	key := in.Intern("answer")

	_, found := table.Get(key)
	require.False(t, found)

	require.True(t, table.Set(key, NewNumber(42)))
	v, found := table.Get(key)
	require.True(t, found)
	require.Equal(t, float64(42), v.(*Number).Value())

	// Overwriting reports an update, not an insert
	require.False(t, table.Set(key, NewNumber(43)))
	v, _ = table.Get(key)
	require.Equal(t, float64(43), v.(*Number).Value())
}

func TestTableDelete(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	key := in.Intern("k")

	require.False(t, table.Delete(key))
	table.Set(key, True)
	require.True(t, table.Delete(key))
	_, found := table.Get(key)
	require.False(t, found)
	require.False(t, table.Delete(key))
}

func TestTableTombstoneProbing(t *testing.T) {
	// Deleting a key in the middle of a probe chain must not break lookups
	// of keys that collided past it
	in := NewInterner()
	table := NewTable()
	var keys []*String
	for i := 0; i < 20; i++ {
		k := in.Intern(fmt.Sprintf("key%d", i))
		keys = append(keys, k)
		table.Set(k, NewNumber(float64(i)))
	}
	for i := 0; i < 10; i++ {
		require.True(t, table.Delete(keys[i]))
	}
	for i := 10; i < 20; i++ {
		v, found := table.Get(keys[i])
		require.True(t, found, keys[i].Value())
		require.Equal(t, float64(i), v.(*Number).Value())
	}
}

func TestTableTombstoneReuse(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	k := in.Intern("x")
	table.Set(k, True)
	table.Delete(k)
	// Re-inserting lands in the tombstone slot and the key reads back
	require.True(t, table.Set(k, False))
	v, found := table.Get(k)
	require.True(t, found)
	require.Same(t, False, v)
}

func TestTableGrowth(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	require.Equal(t, 0, table.Capacity())

	const n = 100
	for i := 0; i < n; i++ {
		table.Set(in.Intern(fmt.Sprintf("key%d", i)), NewNumber(float64(i)))
		// Load never exceeds 75% right after a set completes
		require.LessOrEqual(t,
			float64(table.count), float64(table.Capacity())*0.75)
	}
	require.Equal(t, n, table.Size())

	// Every previously stored key still maps to its value after resizes
	for i := 0; i < n; i++ {
		v, found := table.Get(in.Intern(fmt.Sprintf("key%d", i)))
		require.True(t, found)
		require.Equal(t, float64(i), v.(*Number).Value())
	}
}

func TestTableResizeDropsTombstones(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	var keys []*String
	for i := 0; i < 6; i++ {
		k := in.Intern(fmt.Sprintf("k%d", i))
		keys = append(keys, k)
		table.Set(k, True)
	}
	for _, k := range keys {
		table.Delete(k)
	}
	// Drive enough inserts to force a resize; the rebuilt table counts only
	// live entries
	for i := 0; i < 20; i++ {
		table.Set(in.Intern(fmt.Sprintf("fresh%d", i)), True)
	}
	require.Equal(t, 20, table.Size())
	require.Equal(t, 20, table.count)
}

func TestTableAddAll(t *testing.T) {
	in := NewInterner()
	from := NewTable()
	to := NewTable()
	for i := 0; i < 5; i++ {
		from.Set(in.Intern(fmt.Sprintf("k%d", i)), NewNumber(float64(i)))
	}
	to.Set(in.Intern("extra"), True)
	from.AddAll(to)
	require.Equal(t, 6, to.Size())
	v, found := to.Get(in.Intern("k3"))
	require.True(t, found)
	require.Equal(t, float64(3), v.(*Number).Value())
}

func TestTableFindString(t *testing.T) {
	in := NewInterner()
	table := NewTable()
	k := in.Intern("needle")
	table.Set(k, Nil)

	found := table.FindString("needle", HashString("needle"))
	require.Same(t, k, found)

	require.Nil(t, table.FindString("missing", HashString("missing")))
	require.Nil(t, NewTable().FindString("needle", HashString("needle")))
}
