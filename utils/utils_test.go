package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThumb(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for x := 0; x < 200; x++ {
		img.Set(x, x%100, color.RGBA{R: 255, A: 255})
	}
	var in bytes.Buffer
	require.NoError(t, png.Encode(&in, img))

	var out bytes.Buffer
	info, err := CreateThumb(50, &in, &out)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), info.OldX)
	assert.Equal(t, uint16(100), info.OldY)
	assert.Equal(t, uint16(50), info.NewX)
	assert.Equal(t, uint16(25), info.NewY)
	assert.Equal(t, int64(out.Len()), info.ThumbSize)

	_, err = jpeg.Decode(&out)
	assert.NoError(t, err)
}

func TestCreateThumb_NotAnImage(t *testing.T) {
	var out bytes.Buffer
	_, err := CreateThumb(50, bytes.NewBufferString("GIF89a but not really"), &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "my_photo.jpg", SafeFileName("my photo.jpg"))
	assert.Equal(t, "_hidden", SafeFileName(".hidden"))
	assert.Equal(t, "____.png", SafeFileName("공연사진.png"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "공연…", Truncate("공연 안내", 2))
}
