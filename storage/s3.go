package storage

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const presignViewURLFor = time.Hour

// S3Storage stages uploads in a local temp dir and pushes them to the bucket on Finalize
type S3Storage struct {
	Bucket   Bucket
	TmpDir   string
	s3Client *s3.S3
}

func NewS3Storage(bucket *Bucket, tmpDir string) (*S3Storage, error) {
	if bucket.Name == "" {
		return nil, errors.New("S3 bucket name is required")
	}
	svc, err := bucket.CreateSVC()
	if err != nil {
		return nil, errors.Wrap(err, "s3 session")
	}
	if err = os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "mkdir %s", tmpDir)
	}
	return &S3Storage{Bucket: *bucket, TmpDir: tmpDir, s3Client: svc}, nil
}

func (s *S3Storage) Type() StorageType {
	return StorageTypeS3
}

func (s *S3Storage) Stage(reader io.Reader) (*StagedFile, error) {
	staged := &StagedFile{ID: uuid.NewString()}
	staged.localPath = filepath.Join(s.TmpDir, "stagesite_"+staged.ID)
	size, err := writeFile(staged.localPath, reader)
	if err != nil {
		_ = os.Remove(staged.localPath)
		return nil, err
	}
	staged.Size = size
	return staged, nil
}

func (s *S3Storage) Finalize(staged *StagedFile, path string) error {
	data, err := os.Open(staged.localPath)
	if err != nil {
		return errors.Wrapf(err, "open staged %s", staged.ID)
	}
	_, err = s.upload(path, data)
	data.Close()
	if err != nil {
		return err
	}
	s.Discard(staged)
	return nil
}

func (s *S3Storage) Discard(staged *StagedFile) {
	if staged != nil {
		_ = os.Remove(staged.localPath)
	}
}

func (s *S3Storage) Save(path string, reader io.Reader) (int64, error) {
	counter := &countingReader{Reader: reader}
	if _, err := s.upload(path, counter); err != nil {
		return 0, err
	}
	return counter.n, nil
}

func (s *S3Storage) upload(path string, body io.Reader) (*s3manager.UploadOutput, error) {
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	input := s3manager.UploadInput{
		Bucket: aws.String(s.Bucket.Name),
		Key:    aws.String(s.Bucket.GetRemotePath(path)),
		Body:   body,
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	out, err := uploader.Upload(&input)
	return out, errors.Wrapf(err, "s3 upload %s", path)
}

func (s *S3Storage) Load(path string, writer io.Writer) (int64, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket.Name),
		Key:    aws.String(s.Bucket.GetRemotePath(path)),
	})
	if err != nil {
		return 0, errors.Wrapf(err, "s3 get %s", path)
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

// Serve redirects to a short lived pre-signed URL
func (s *S3Storage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	url, err := s.Bucket.CreateS3DownloadURI(s.s3Client, path, presignViewURLFor)
	if err != nil {
		http.Error(writer, "storage error", http.StatusInternalServerError)
		return
	}
	http.Redirect(writer, request, url, http.StatusFound)
}

func (s *S3Storage) Exists(path string) bool {
	_, err := s.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.Bucket.Name),
		Key:    aws.String(s.Bucket.GetRemotePath(path)),
	})
	return err == nil
}

// Delete is idempotent: S3 reports success for missing keys
func (s *S3Storage) Delete(path string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket.Name),
		Key:    aws.String(s.Bucket.GetRemotePath(path)),
	})
	return errors.Wrapf(err, "s3 delete %s", path)
}

type countingReader struct {
	io.Reader
	n int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	r.n += int64(n)
	return n, err
}
