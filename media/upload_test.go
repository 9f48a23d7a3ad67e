package media

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"stagesite/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	name    string
	content []byte
}

func fileHeaders(t *testing.T, field string, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File[field]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestBuildFilename(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 15, 0, 123456789, time.UTC)
	assert.Equal(t, "post12_20240315_101500_123456_1.jpg", BuildFilename("post12", at, 1, "Photo.JPG"))
	assert.Equal(t, "video_20240315_101500_123456_2.mp4", BuildFilename("video", at, 2, "clip.mp4"))
}

func TestAllowedImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"a.JPG", true},
		{"a.jpeg", true},
		{"a.gif", true},
		{"a.webp", false},
		{"a.png.exe", false},
		{"png", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedImage(tt.name))
		})
	}
	assert.True(t, AllowedVideo("clip.MP4"))
	assert.False(t, AllowedVideo("clip.png"))
}

func TestThumbName(t *testing.T) {
	assert.Equal(t, "thumb_post_1.jpg", ThumbName("post_1.png"))
}

func TestBatch_CommitPublishesAllowedImages(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewDiskStorage(root)
	require.NoError(t, err)

	files := fileHeaders(t, "images",
		testFile{"one.png", pngBytes(t)},
		testFile{"evil.exe", []byte("MZ")},
		testFile{"empty.png", nil},
		testFile{"two.PNG", pngBytes(t)},
	)
	batch := NewBatch(store)
	uploads, err := batch.AddImages(files, "post", time.Now())
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, 1, uploads[0].Index)
	assert.Equal(t, 4, uploads[1].Index)
	assert.Equal(t, ".png", filepath.Ext(uploads[1].Filename))

	assert.Equal(t, 0, countFiles(t, filepath.Join(root, storage.DirImages)))
	require.NoError(t, batch.Commit())
	assert.Equal(t, 2, countFiles(t, filepath.Join(root, storage.DirImages)))
	assert.Equal(t, 2, countFiles(t, filepath.Join(root, storage.DirThumbnails)))
	assert.Contains(t, ThumbnailURL(store, uploads[0].Filename), "/thumbnails/thumb_")
}

func TestBatch_DiscardLeavesNothing(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewDiskStorage(root)
	require.NoError(t, err)

	batch := NewBatch(store)
	_, err = batch.AddImages(fileHeaders(t, "images", testFile{"one.png", pngBytes(t)}), "post", time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, batch.Len())
	batch.Discard()

	assert.Equal(t, 0, countFiles(t, filepath.Join(root, storage.DirImages)))
	assert.Equal(t, 0, countFiles(t, filepath.Join(root, ".staging")))
}

func TestBatch_AddFileRejectsDisallowed(t *testing.T) {
	store, err := storage.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	batch := NewBatch(store)
	files := fileHeaders(t, "video_file", testFile{"clip.avi", []byte("RIFF")})
	_, err = batch.AddFile(files[0], storage.DirVideos, "video", 1, time.Now(), AllowedVideo)
	assert.ErrorIs(t, err, ErrNotAllowed)
	_, err = batch.AddFile(nil, storage.DirVideos, "video", 1, time.Now(), AllowedVideo)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.Zero(t, batch.Len())
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewDiskStorage(root)
	require.NoError(t, err)

	batch := NewBatch(store)
	uploads, err := batch.AddImages(fileHeaders(t, "images", testFile{"one.png", pngBytes(t)}), "post", time.Now())
	require.NoError(t, err)
	require.NoError(t, batch.Commit())

	require.NoError(t, Remove(store, storage.DirImages, uploads[0].Filename))
	assert.Equal(t, 0, countFiles(t, filepath.Join(root, storage.DirImages)))
	assert.Equal(t, 0, countFiles(t, filepath.Join(root, storage.DirThumbnails)))

	// second time is a no-op
	assert.NoError(t, Remove(store, storage.DirImages, uploads[0].Filename))
	assert.NoError(t, Remove(store, storage.DirImages, ""))
	assert.Error(t, Remove(store, storage.DirImages, "../x"))
}
