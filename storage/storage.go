package storage

import (
	"io"
	"net/http"
	"path"
	"stagesite/config"
	"stagesite/logger"
	"strings"

	"github.com/pkg/errors"
)

type StorageType string

const (
	StorageTypeFile StorageType = "disk"
	StorageTypeS3   StorageType = "s3"
)

// Fixed sub-directories under the upload root
const (
	DirImages     = "images"
	DirVideos     = "videos"
	DirThumbnails = "thumbnails"
	dirStaging    = ".staging"
)

var ErrInvalidPath = errors.New("invalid storage path")

// StagedFile holds uploaded bytes that are not yet visible at their final path
type StagedFile struct {
	ID        string
	Size      int64
	localPath string
}

// LocalPath is where the staged bytes can be read from until Finalize or Discard
func (s *StagedFile) LocalPath() string {
	return s.localPath
}

// StorageAPI is implemented by every storage backend.
// Paths are relative to the upload root, e.g. images/post_20240101_120000_000000_1.jpg
type StorageAPI interface {
	Type() StorageType
	// Stage writes the bytes to a private location
	Stage(reader io.Reader) (*StagedFile, error)
	// Finalize moves a staged file to its public path
	Finalize(staged *StagedFile, path string) error
	// Discard removes a staged file that will never be finalized
	Discard(staged *StagedFile)
	// Save writes directly to the public path
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Exists(path string) bool
	// Delete removes a file. Missing files are not an error
	Delete(path string) error
}

var current StorageAPI

func Init() {
	var err error
	switch StorageType(config.STORAGE_TYPE) {
	case StorageTypeS3:
		current, err = NewS3Storage(&Bucket{
			Name:     config.S3_BUCKET,
			Region:   config.S3_REGION,
			Endpoint: config.S3_ENDPOINT,
			Prefix:   config.S3_PREFIX,
			Key:      config.S3_KEY,
			Secret:   config.S3_SECRET,
		}, config.TMP_DIR)
	default:
		current, err = NewDiskStorage(config.UPLOAD_ROOT)
	}
	if err != nil {
		panic(err)
	}
	logger.Get().Info().Str("type", string(current.Type())).Msg("storage ready")
}

// Use replaces the process-wide storage
func Use(s StorageAPI) {
	current = s
}

func Default() StorageAPI {
	if current == nil {
		panic("no storage available")
	}
	return current
}

// Join builds a storage path from a directory and a file name, rejecting
// anything that would escape the directory
func Join(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.Wrapf(ErrInvalidPath, "%q", name)
	}
	return dir + "/" + name, nil
}

// Clean validates a request path (as served under the uploads URL)
func Clean(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." || strings.HasPrefix(p, dirStaging) {
		return "", errors.Wrapf(ErrInvalidPath, "%q", p)
	}
	return p, nil
}

// URL returns the public URL of a stored file
func URL(p string) string {
	return config.UPLOAD_URL_PREFIX + "/" + p
}
