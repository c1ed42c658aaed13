package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveStream("avatars/u1.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.Equal(t, "avatars/u1.png", name)

	f, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(name))
	_, err = store.Open(name)
	require.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../escape.txt", []byte("x"))
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrInvalidPath)
}
