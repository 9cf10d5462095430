package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaylistEmpty(t *testing.T) {
	p := NewPlaylist()
	_, ok := p.Next()
	require.False(t, ok)
	_, ok = p.Prev()
	require.False(t, ok)
	require.Empty(t, p.Current())
}

func TestPlaylistNext(t *testing.T) {
	p := NewPlaylist()
	p.SetItems([]string{"a", "b", "c"})

	id, ok := p.Next()
	require.True(t, ok)
	require.Equal(t, "a", id, "next with no current resolves the first item")

	id, ok = p.Next()
	require.True(t, ok)
	require.Equal(t, "b", id)

	id, ok = p.Next()
	require.True(t, ok)
	require.Equal(t, "c", id)

	_, ok = p.Next()
	require.False(t, ok, "next on the last item is a no-op")
	require.Equal(t, "c", p.Current())
	require.Equal(t, "b", p.Previous())
}

func TestPlaylistPrev(t *testing.T) {
	p := NewPlaylist()
	p.SetItems([]string{"a", "b", "c"})

	id, ok := p.Prev()
	require.True(t, ok)
	require.Equal(t, "a", id, "prev with no current clamps to the first item")

	_, ok = p.Prev()
	require.False(t, ok, "prev on the first item is a no-op")

	_, ok = p.Select("c")
	require.True(t, ok)
	id, ok = p.Prev()
	require.True(t, ok)
	require.Equal(t, "b", id)
	require.Equal(t, "c", p.Previous())
}

func TestPlaylistSelect(t *testing.T) {
	p := NewPlaylist()
	p.SetItems([]string{"a", "b"})

	id, ok := p.Select("b")
	require.True(t, ok)
	require.Equal(t, "b", id)

	_, ok = p.Select("b")
	require.False(t, ok, "reselecting the current item is a no-op")

	// Selection is not restricted to the rendered list.
	id, ok = p.Select("z")
	require.True(t, ok)
	require.Equal(t, "z", id)
	require.Equal(t, "b", p.Previous())

	_, ok = p.Select("")
	require.False(t, ok)
}

func TestPlaylistSetItemsCopies(t *testing.T) {
	src := []string{"a", "b"}
	p := NewPlaylist()
	p.SetItems(src)
	src[0] = "mutated"

	id, ok := p.Next()
	require.True(t, ok)
	require.Equal(t, "a", id)
}
