package storage

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Bucket describes a remote S3 (or compatible) bucket
type Bucket struct {
	Name     string
	Region   string
	Endpoint string // Empty for AWS itself
	Prefix   string // Key prefix inside the bucket
	Key      string
	Secret   string
}

func (b *Bucket) CreateSVC() (*s3.S3, error) {
	cfg := aws.NewConfig().WithRegion(b.Region)
	if b.Key != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(b.Key, b.Secret, ""))
	}
	if b.Endpoint != "" {
		cfg = cfg.WithEndpoint(b.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}

// GetRemotePath maps a storage path to an object key
func (b *Bucket) GetRemotePath(path string) string {
	prefix := strings.Trim(b.Prefix, "/")
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}

func (b *Bucket) CreateS3DownloadURI(svc *s3.S3, path string, expiry time.Duration) (string, error) {
	req, _ := svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.Name),
		Key:    aws.String(b.GetRemotePath(path)),
	})
	return req.Presign(expiry)
}
