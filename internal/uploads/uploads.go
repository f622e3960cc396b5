// Package uploads validates and stores files attached to consultant quotes.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/logger"
)

// DefaultMaxBytes is the upload cap when none is configured.
const DefaultMaxBytes = 50 * 1024 * 1024

// sniffBytes is how much of the file mimetype needs to see.
const sniffBytes = 3072

var allowedTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
	"text/csv":                 true,
	"image/png":                true,
	"image/jpeg":               true,
	"application/pdf":          true,
}

// Store persists an object and returns its public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

type Upload struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type Uploader struct {
	store    Store
	maxBytes int64
	log      *logger.Logger
}

func NewUploader(store Store, maxBytes int64, log *logger.Logger) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{store: store, maxBytes: maxBytes, log: log.With("service", "Uploader")}
}

func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// DetectType sniffs head and returns the allowed MIME type it matches.
func DetectType(head []byte, filename string) (string, bool) {
	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		if allowedTypes[m.String()] {
			return m.String(), true
		}
		for alias := range allowedTypes {
			if m.Is(alias) {
				return alias, true
			}
		}
	}
	// short CSV files are often detected as plain text
	if mt.Is("text/plain") && strings.EqualFold(path.Ext(filename), ".csv") {
		return "text/csv", true
	}
	return mt.String(), false
}

func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if s := strings.Trim(b.String(), "."); s != "" {
		return s
	}
	return "file"
}

// Accept validates size and content type, then stores the file.
func (u *Uploader) Accept(ctx context.Context, filename string, size int64, r io.Reader) (*Upload, error) {
	if u.store == nil {
		return nil, apperr.Internal("Uploads are not configured", nil)
	}
	if size > u.maxBytes {
		return nil, apperr.Validation("File too large")
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperr.Internal("Failed to read upload", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, apperr.Validation("File is empty")
	}

	contentType, ok := DetectType(head, filename)
	if !ok {
		return nil, apperr.Validation("Invalid file type")
	}

	// Spool to disk so the size is known before anything reaches the store.
	spool, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, apperr.Internal("Failed to buffer upload", err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(r, u.maxBytes+1-int64(n)))
	written, err := io.Copy(spool, body)
	if err != nil {
		return nil, apperr.Internal("Failed to buffer upload", err)
	}
	if written > u.maxBytes {
		return nil, apperr.Validation("File too large")
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return nil, apperr.Internal("Failed to buffer upload", err)
	}

	key := fmt.Sprintf("consultant/%s/%s", uuid.NewString(), cleanName(filename))
	url, err := u.store.Put(ctx, key, contentType, spool)
	if err != nil {
		return nil, apperr.Provider("Failed to store file", err)
	}

	u.log.Info("file uploaded", "key", key, "size", written, "content_type", contentType)
	return &Upload{URL: url, Filename: filename, Size: written, ContentType: contentType}, nil
}
