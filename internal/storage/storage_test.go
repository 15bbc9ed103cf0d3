package storage

import (
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenRemove(t *testing.T) {
	store, err := New(t.TempDir(), "/api/uploads")
	require.NoError(t, err)

	name := UniqueName("ws_", "42", ".PDF")
	assert.Regexp(t, regexp.MustCompile(`^ws_42_[0-9a-f]{8}\.pdf$`), name)
	assert.Equal(t, "/api/uploads/"+name, store.URL(name))
	assert.Equal(t, name, NameFromURL(store.URL(name)))

	require.NoError(t, store.Save(name, strings.NewReader("hello")))
	f, err := store.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(name))
	_, err = store.Open(name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir(), "/api/uploads")
	require.NoError(t, err)

	for _, name := range []string{"../secret", "a/b.pdf", `..\x`, "..", ""} {
		_, err := store.Open(name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "gem_7_ab12cd34.xlsx", DownloadName("gem_7_ab12cd34.XLSX"))
	assert.Equal(t, "tender-final-v2.pdf", DownloadName("Tender Final v2.pdf"))
	assert.Equal(t, "document.png", DownloadName("!!!.png"))
}
