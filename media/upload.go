package media

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"stagesite/logger"
	"stagesite/metrics"
	"stagesite/storage"
	"stagesite/utils"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const ThumbSize = 480

var (
	ImageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}
	VideoExtensions = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".m4v": true}

	ErrNotAllowed = errors.New("file type not allowed")
)

func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

func AllowedImage(name string) bool {
	return ImageExtensions[Ext(name)]
}

func AllowedVideo(name string) bool {
	return VideoExtensions[Ext(name)]
}

// BuildFilename returns <prefix>_<YYYYMMDD_HHMMSS_micro>_<index><ext>
func BuildFilename(prefix string, at time.Time, index int, original string) string {
	timestamp := at.Format("20060102_150405") + fmt.Sprintf("_%06d", at.Nanosecond()/1000)
	return fmt.Sprintf("%s_%s_%d%s", utils.SafeFileName(prefix), timestamp, index, Ext(original))
}

// ThumbName is the name of the generated JPEG thumbnail for a stored image
func ThumbName(filename string) string {
	return "thumb_" + strings.TrimSuffix(filename, filepath.Ext(filename)) + ".jpg"
}

type Upload struct {
	Dir          string
	Filename     string
	OriginalName string
	Index        int
	Size         int64
	staged       *storage.StagedFile
}

func (u *Upload) Path() string {
	return u.Dir + "/" + u.Filename
}

// Batch collects staged uploads for one request. Nothing becomes public until Commit,
// so a failed DB write only needs Discard
type Batch struct {
	store   storage.StorageAPI
	uploads []*Upload
}

func NewBatch(store storage.StorageAPI) *Batch {
	return &Batch{store: store}
}

func (b *Batch) Len() int {
	return len(b.uploads)
}

// AddImages stages every allowed image. Empty or disallowed files are skipped
func (b *Batch) AddImages(files []*multipart.FileHeader, prefix string, at time.Time) ([]*Upload, error) {
	result := []*Upload{}
	for i, file := range files {
		upload, err := b.AddFile(file, storage.DirImages, prefix, i+1, at, AllowedImage)
		if errors.Is(err, ErrNotAllowed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, upload)
	}
	return result, nil
}

// AddFile stages a single file if allowed accepts its name
func (b *Batch) AddFile(file *multipart.FileHeader, dir, prefix string, index int, at time.Time, allowed func(string) bool) (*Upload, error) {
	kind := strings.TrimSuffix(dir, "s")
	if file == nil || file.Filename == "" || file.Size == 0 || !allowed(file.Filename) {
		metrics.Uploads.WithLabelValues(kind, "rejected").Inc()
		return nil, ErrNotAllowed
	}
	reader, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "open upload %q", file.Filename)
	}
	defer reader.Close()
	staged, err := b.store.Stage(reader)
	if err != nil {
		metrics.Uploads.WithLabelValues(kind, "failed").Inc()
		return nil, err
	}
	upload := &Upload{
		Dir:          dir,
		Filename:     BuildFilename(prefix, at, index, file.Filename),
		OriginalName: file.Filename,
		Index:        index,
		Size:         staged.Size,
		staged:       staged,
	}
	b.uploads = append(b.uploads, upload)
	return upload, nil
}

// Commit publishes all staged files. Images also get a thumbnail (best effort)
func (b *Batch) Commit() error {
	var firstErr error
	for _, upload := range b.uploads {
		kind := strings.TrimSuffix(upload.Dir, "s")
		if err := b.store.Finalize(upload.staged, upload.Path()); err != nil {
			metrics.Uploads.WithLabelValues(kind, "failed").Inc()
			b.store.Discard(upload.staged)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.Uploads.WithLabelValues(kind, "stored").Inc()
		if upload.Dir == storage.DirImages {
			b.createThumb(upload)
		}
	}
	b.uploads = nil
	return firstErr
}

func (b *Batch) Discard() {
	for _, upload := range b.uploads {
		b.store.Discard(upload.staged)
	}
	b.uploads = nil
}

func (b *Batch) createThumb(upload *Upload) {
	var buf, thumb bytes.Buffer
	if _, err := b.store.Load(upload.Path(), &buf); err != nil {
		logger.Get().Warn().Err(err).Str("file", upload.Filename).Msg("thumbnail: cannot load image")
		return
	}
	if _, err := utils.CreateThumb(ThumbSize, &buf, &thumb); err != nil {
		logger.Get().Warn().Err(err).Str("file", upload.Filename).Msg("thumbnail: cannot decode image")
		return
	}
	if _, err := b.store.Save(storage.DirThumbnails+"/"+ThumbName(upload.Filename), &thumb); err != nil {
		logger.Get().Warn().Err(err).Str("file", upload.Filename).Msg("thumbnail: cannot save")
	}
}

// Remove deletes a stored file (and the generated thumbnail of an image).
// Already missing files are fine
func Remove(store storage.StorageAPI, dir, filename string) error {
	if filename == "" {
		return nil
	}
	path, err := storage.Join(dir, filename)
	if err != nil {
		return err
	}
	if err = store.Delete(path); err != nil {
		return err
	}
	if dir == storage.DirImages {
		if err = store.Delete(storage.DirThumbnails + "/" + ThumbName(filename)); err != nil {
			logger.Get().Warn().Err(err).Str("file", filename).Msg("cannot delete thumbnail")
		}
	}
	return nil
}

// ThumbnailURL returns the generated thumbnail URL of a stored image,
// falling back to the image itself
func ThumbnailURL(store storage.StorageAPI, filename string) string {
	thumb := storage.DirThumbnails + "/" + ThumbName(filename)
	if store != nil && store.Exists(thumb) {
		return storage.URL(thumb)
	}
	return storage.URL(storage.DirImages + "/" + filename)
}
