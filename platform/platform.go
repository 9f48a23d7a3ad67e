// Package platform knows where a video is hosted and how to embed it
package platform

import (
	"errors"
	"fmt"
	"regexp"
	"stagesite/config"
	"strings"
)

type Kind string

const (
	YouTube Kind = "youtube"
	Vimeo   Kind = "vimeo"
	Local   Kind = "local"
)

var (
	ErrInvalidURL      = errors.New("unrecognized video URL")
	ErrUnknownPlatform = errors.New("unknown video platform")
)

// Platform resolves platform specific URLs for a video id
type Platform interface {
	Kind() Kind
	Label() string
	// External platforms are identified by an id taken from a pasted URL
	External() bool
	ExtractID(rawURL string) (string, error)
	EmbedURL(id string) string
	WatchURL(id string) string
	// ThumbnailURL is "" when it cannot be derived without a network call
	ThumbnailURL(id string) string
}

var platforms = map[Kind]Platform{
	YouTube: youtube{},
	Vimeo:   vimeo{},
	Local:   local{},
}

func Kinds() []Kind {
	return []Kind{YouTube, Vimeo, Local}
}

func Parse(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := platforms[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return k, nil
}

func For(k Kind) (Platform, error) {
	p, ok := platforms[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, k)
	}
	return p, nil
}

func extract(re *regexp.Regexp, rawURL string) (string, error) {
	m := re.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return m[1], nil
}

type youtube struct{}

var youtubeRe = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})(?:[?&#/]|$)`)

func (youtube) Kind() Kind     { return YouTube }
func (youtube) Label() string  { return "YouTube" }
func (youtube) External() bool { return true }

func (youtube) ExtractID(rawURL string) (string, error) {
	return extract(youtubeRe, rawURL)
}

func (youtube) EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

func (youtube) WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func (youtube) ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

type vimeo struct{}

var vimeoRe = regexp.MustCompile(`^(?:https?://)?(?:www\.|player\.)?vimeo\.com/(?:video/|channels/[\w-]+/|groups/[\w-]+/videos/|album/\d+/video/)?(\d+)(?:[?#/]|$)`)

func (vimeo) Kind() Kind     { return Vimeo }
func (vimeo) Label() string  { return "Vimeo" }
func (vimeo) External() bool { return true }

func (vimeo) ExtractID(rawURL string) (string, error) {
	return extract(vimeoRe, rawURL)
}

func (vimeo) EmbedURL(id string) string {
	return "https://player.vimeo.com/video/" + id
}

func (vimeo) WatchURL(id string) string {
	return "https://vimeo.com/" + id
}

func (vimeo) ThumbnailURL(string) string {
	return ""
}

// local videos use their stored file name as id
type local struct{}

func (local) Kind() Kind     { return Local }
func (local) Label() string  { return "Upload" }
func (local) External() bool { return false }

func (local) ExtractID(rawURL string) (string, error) {
	return "", fmt.Errorf("%w: local videos are uploaded, not linked", ErrInvalidURL)
}

func (local) EmbedURL(id string) string {
	if id == "" {
		return ""
	}
	return config.UPLOAD_URL_PREFIX + "/videos/" + id
}

func (l local) WatchURL(id string) string {
	return l.EmbedURL(id)
}

func (local) ThumbnailURL(string) string {
	return ""
}
