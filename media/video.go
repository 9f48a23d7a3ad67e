package media

import (
	"bytes"
	"context"
	"math"
	"os/exec"
	"stagesite/config"
	"stagesite/storage"
	"stagesite/utils"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrToolMissing = errors.New("video tool not configured")

// VideoDuration asks exiftool for the length of a staged video, in whole seconds
func VideoDuration(ctx context.Context, video *Upload) (int, error) {
	if config.EXIFTOOL_PATH == "" {
		return 0, ErrToolMissing
	}
	output, err := exec.CommandContext(ctx, config.EXIFTOOL_PATH, "-n", "-T", "-duration", video.staged.LocalPath()).Output()
	if err != nil {
		return 0, errors.Wrap(err, "exiftool")
	}
	value := strings.Trim(string(output), "\n\t\r ")
	if value == "" || value == "-" {
		return 0, errors.Errorf("no duration for %s", video.OriginalName)
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse duration %q", value)
	}
	return int(math.Round(seconds)), nil
}

// AddPoster stages the first frame of a staged video as a JPEG thumbnail
func (b *Batch) AddPoster(ctx context.Context, video *Upload, prefix string, at time.Time) (*Upload, error) {
	if config.FFMPEG_PATH == "" {
		return nil, ErrToolMissing
	}
	var frame, thumb bytes.Buffer
	cmd := exec.CommandContext(ctx, config.FFMPEG_PATH, "-v", "error", "-i", video.staged.LocalPath(),
		"-ss", "00:00:00.000", "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	cmd.Stdout = &frame
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(err, "ffmpeg")
	}
	if _, err := utils.CreateThumb(ThumbSize, &frame, &thumb); err != nil {
		return nil, errors.Wrap(err, "decode video frame")
	}
	staged, err := b.store.Stage(&thumb)
	if err != nil {
		return nil, err
	}
	upload := &Upload{
		Dir:          storage.DirThumbnails,
		Filename:     BuildFilename(prefix, at, video.Index, "poster.jpg"),
		OriginalName: video.OriginalName,
		Index:        video.Index,
		Size:         staged.Size,
		staged:       staged,
	}
	b.uploads = append(b.uploads, upload)
	return upload, nil
}
