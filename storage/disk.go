package storage

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pkg/errors"
)

type DiskStorage struct {
	// BasePath is a directory that is writable by the current process
	BasePath string
	dirs     cmap.ConcurrentMap[string, bool]
}

func NewDiskStorage(basePath string) (*DiskStorage, error) {
	s := &DiskStorage{
		BasePath: basePath,
		dirs:     cmap.New[bool](),
	}
	// Pre-create locations on disk
	for _, dir := range []string{DirImages, DirVideos, DirThumbnails, dirStaging} {
		if err := s.createDir(filepath.Join(basePath, dir)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *DiskStorage) Type() StorageType {
	return StorageTypeFile
}

func (s *DiskStorage) createDir(dir string) error {
	if s.dirs.Has(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "mkdir %s", dir)
	}
	s.dirs.Set(dir, true)
	return nil
}

func (s *DiskStorage) getFullPath(path string) string {
	return filepath.Join(s.BasePath, filepath.FromSlash(path))
}

func (s *DiskStorage) Stage(reader io.Reader) (*StagedFile, error) {
	staged := &StagedFile{ID: uuid.NewString()}
	staged.localPath = s.getFullPath(dirStaging + "/" + staged.ID)
	size, err := writeFile(staged.localPath, reader)
	if err != nil {
		_ = os.Remove(staged.localPath)
		return nil, err
	}
	staged.Size = size
	return staged, nil
}

func (s *DiskStorage) Finalize(staged *StagedFile, path string) error {
	fileName := s.getFullPath(path)
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return err
	}
	return errors.Wrapf(os.Rename(staged.localPath, fileName), "finalize %s", path)
}

func (s *DiskStorage) Discard(staged *StagedFile) {
	if staged != nil {
		_ = os.Remove(staged.localPath)
	}
}

func (s *DiskStorage) Save(path string, reader io.Reader) (int64, error) {
	fileName := s.getFullPath(path)
	if err := s.createDir(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	return writeFile(fileName, reader)
}

func (s *DiskStorage) Load(path string, writer io.Writer) (int64, error) {
	file, err := os.Open(s.getFullPath(path))
	if err != nil {
		return 0, errors.Wrapf(err, "load %s", path)
	}
	defer file.Close()
	return io.Copy(writer, file)
}

func (s *DiskStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	http.ServeFile(writer, request, s.getFullPath(path))
}

// Exists is false for directories
func (s *DiskStorage) Exists(path string) bool {
	info, err := os.Stat(s.getFullPath(path))
	return err == nil && info.Mode().IsRegular()
}

func (s *DiskStorage) Delete(path string) error {
	err := os.Remove(s.getFullPath(path))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "delete %s", path)
	}
	return nil
}

func writeFile(fileName string, reader io.Reader) (int64, error) {
	file, err := os.Create(fileName)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s", fileName)
	}
	result, err := io.Copy(file, reader)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return result, errors.Wrapf(err, "write %s", fileName)
}
