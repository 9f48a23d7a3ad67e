package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStorage_StageFinalize(t *testing.T) {
	root := t.TempDir()
	s, err := NewDiskStorage(root)
	require.NoError(t, err)

	staged, err := s.Stage(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), staged.Size)
	assert.False(t, s.Exists("images/a.png"), "staged file must not be public yet")

	require.NoError(t, s.Finalize(staged, "images/a.png"))
	assert.True(t, s.Exists("images/a.png"))

	var buf bytes.Buffer
	_, err = s.Load("images/a.png", &buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())

	entries, err := os.ReadDir(filepath.Join(root, dirStaging))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStorage_Discard(t *testing.T) {
	root := t.TempDir()
	s, err := NewDiskStorage(root)
	require.NoError(t, err)

	staged, err := s.Stage(strings.NewReader("bytes"))
	require.NoError(t, err)
	s.Discard(staged)

	entries, err := os.ReadDir(filepath.Join(root, dirStaging))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStorage_DeleteIsIdempotent(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("thumbnails/x.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NoError(t, s.Delete("thumbnails/x.jpg"))
	assert.False(t, s.Exists("thumbnails/x.jpg"))
	assert.NoError(t, s.Delete("thumbnails/x.jpg"))
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "a.png", "images/a.png", false},
		{"slash", "../a.png", "", true},
		{"backslash", `..\a.png`, "", true},
		{"empty", "", "", true},
		{"dotdot", "..", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Join(DirImages, tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean(t *testing.T) {
	got, err := Clean("/images/../images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", got)

	got, err = Clean("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", got, "cannot climb above the root")

	_, err = Clean("/.staging/abc")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = Clean("/")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
