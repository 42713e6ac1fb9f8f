package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_SaveLoadDelete(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveFile("exports", "a.txt", []byte("hello")))
	assert.True(t, fs.FileExists("exports", "a.txt"))

	content, err := fs.LoadFile("exports", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, fs.DeleteFile("exports", "a.txt"))
	assert.False(t, fs.FileExists("exports", "a.txt"))

	err = fs.DeleteFile("exports", "a.txt")
	assert.Error(t, err)
}

func TestFileStorage_SaveJSONFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.SaveJSONFile("", "config.json", map[string]string{"k": "v"}))

	content, err := fs.LoadFile("", "config.json")
	require.NoError(t, err)
	assert.Contains(t, string(content), `"k": "v"`)
}

func TestFileStorage_ConcurrentWritesSamePath(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fs.SaveFile("exports", "same.txt", []byte("payload"))
		}()
	}
	wg.Wait()

	content, err := fs.LoadFile("exports", "same.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(content))
}
