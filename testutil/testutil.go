// Package testutil sets up throwaway databases and upload roots for tests
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"stagesite/config"
	"stagesite/db"
	"stagesite/logger"
	"stagesite/storage"
	"strings"
	"testing"
)

// SetupDB points db.Instance at a fresh in-memory SQLite database.
// Callers run models.Init themselves
func SetupDB(t *testing.T) {
	t.Helper()
	logger.SetOutput(io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	instance, err := db.Open(config.DialectSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.Instance = instance
	t.Cleanup(func() {
		if sqlDB, err := instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// SetupStorage makes a disk storage rooted in a temp dir the process-wide storage
func SetupStorage(t *testing.T) (*storage.DiskStorage, string) {
	t.Helper()
	root := t.TempDir()
	s, err := storage.NewDiskStorage(root)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	storage.Use(s)
	return s, root
}

// PNG returns a small valid PNG image
func PNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

type File struct {
	Field   string
	Name    string
	Content []byte
}

// Multipart encodes form fields and files, returning the body and its content type
func Multipart(t *testing.T, fields map[string]string, files ...File) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		if _, err = part.Write(f.Content); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &body, w.FormDataContentType()
}
