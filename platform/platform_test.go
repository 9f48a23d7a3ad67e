package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		url     string
		want    string
		wantErr bool
	}{
		{"youtube watch", YouTube, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube watch with params", YouTube, "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ", false},
		{"youtube short link", YouTube, "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"youtube embed", YouTube, "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube shorts", YouTube, "https://m.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube no scheme", YouTube, "youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube short id", YouTube, "https://youtu.be/abc", "", true},
		{"youtube other host", YouTube, "https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"vimeo plain", Vimeo, "https://vimeo.com/76979871", "76979871", false},
		{"vimeo player", Vimeo, "https://player.vimeo.com/video/76979871?h=1", "76979871", false},
		{"vimeo channel", Vimeo, "https://vimeo.com/channels/staffpicks/76979871", "76979871", false},
		{"vimeo not numeric", Vimeo, "https://vimeo.com/about", "", true},
		{"vimeo given youtube", Vimeo, "https://youtu.be/dQw4w9WgXcQ", "", true},
		{"local never", Local, "https://example.com/a.mp4", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := For(tt.kind)
			require.NoError(t, err)
			got, err := p.ExtractID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	k, err := Parse(" YouTube ")
	require.NoError(t, err)
	assert.Equal(t, YouTube, k)

	_, err = Parse("dailymotion")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestURLs(t *testing.T) {
	yt, _ := For(YouTube)
	assert.Equal(t, "https://www.youtube.com/embed/abc", yt.EmbedURL("abc"))
	assert.Equal(t, "https://img.youtube.com/vi/abc/hqdefault.jpg", yt.ThumbnailURL("abc"))

	vm, _ := For(Vimeo)
	assert.Equal(t, "https://player.vimeo.com/video/123", vm.EmbedURL("123"))
	assert.Empty(t, vm.ThumbnailURL("123"))

	lc, _ := For(Local)
	assert.Equal(t, "/static/uploads/videos/video_1.mp4", lc.EmbedURL("video_1.mp4"))
	assert.False(t, lc.External())
}

func TestOEmbedClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://vimeo.com/123", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Spring concert","author_name":"Choir","thumbnail_url":"https://i.vimeocdn.com/1.jpg","duration":321}`))
	}))
	defer srv.Close()

	client := NewOEmbedClient()
	client.SetEndpoint(Vimeo, srv.URL)
	got, err := client.Fetch(context.Background(), Vimeo, "123")
	require.NoError(t, err)
	assert.Equal(t, "Spring concert", got.Title)
	assert.Equal(t, "https://i.vimeocdn.com/1.jpg", got.ThumbnailURL)
	assert.Equal(t, 321, got.Duration)
}

func TestOEmbedClient_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOEmbedClient()
	client.SetEndpoint(YouTube, srv.URL)
	_, err := client.Fetch(context.Background(), YouTube, "dQw4w9WgXcQ")
	assert.Error(t, err)

	_, err = client.Fetch(context.Background(), Local, "x.mp4")
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}
