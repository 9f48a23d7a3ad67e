package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// OEmbed is the subset of an oEmbed response we use
type OEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"` // Vimeo only
}

type OEmbedClient struct {
	client    *resty.Client
	endpoints map[Kind]string
}

func NewOEmbedClient() *OEmbedClient {
	return &OEmbedClient{
		client: resty.New().
			SetTimeout(5*time.Second).
			SetHeader("Accept", "application/json"),
		endpoints: map[Kind]string{
			YouTube: "https://www.youtube.com/oembed",
			Vimeo:   "https://vimeo.com/api/oembed.json",
		},
	}
}

// SetEndpoint overrides the oEmbed endpoint of a platform
func (o *OEmbedClient) SetEndpoint(k Kind, url string) {
	o.endpoints[k] = url
}

// Fetch asks the platform for metadata about the given video
func (o *OEmbedClient) Fetch(ctx context.Context, k Kind, id string) (*OEmbed, error) {
	endpoint, ok := o.endpoints[k]
	if !ok {
		return nil, fmt.Errorf("%w: no oEmbed endpoint for %q", ErrUnknownPlatform, k)
	}
	p, err := For(k)
	if err != nil {
		return nil, err
	}
	result := &OEmbed{}
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"url": p.WatchURL(id), "format": "json"}).
		SetResult(result).
		Get(endpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("oembed %s: status %d", k, resp.StatusCode())
	}
	return result, nil
}
