package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/s/courseStore/internal/apperr"
	"github.com/s/courseStore/internal/logger"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[key] = b
	m.types[key] = contentType
	return "https://files.test/" + key, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestAcceptStoresAllowedTypes(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantType string
	}{
		{"png", "chart.png", pngHeader, "image/png"},
		{"pdf", "brief.pdf", []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), "application/pdf"},
		{"csv", "data.csv", []byte("month,revenue\njan,100\nfeb,120\n"), "text/csv"},
		{"jpeg", "photo.jpg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			u := NewUploader(store, 0, logger.Nop())

			up, err := u.Accept(context.Background(), tt.filename, int64(len(tt.content)), bytes.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Accept: %v", err)
			}
			if up.ContentType != tt.wantType {
				t.Fatalf("ContentType = %q, want %q", up.ContentType, tt.wantType)
			}
			if up.Size != int64(len(tt.content)) || up.Filename != tt.filename {
				t.Fatalf("upload = %+v", up)
			}
			key := strings.TrimPrefix(up.URL, "https://files.test/")
			if !bytes.Equal(store.objects[key], tt.content) {
				t.Fatalf("stored bytes differ")
			}
		})
	}
}

func TestAcceptRejects(t *testing.T) {
	store := newMemStore()
	u := NewUploader(store, 64, logger.Nop())
	ctx := context.Background()

	if _, err := u.Accept(ctx, "tool.exe", 10, bytes.NewReader([]byte("MZ\x90\x00\x03\x00\x00\x00"))); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("exe err = %v, want validation", err)
	}
	if _, err := u.Accept(ctx, "big.png", 65, bytes.NewReader(pngHeader)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("declared size err = %v, want validation", err)
	}
	big := append(append([]byte{}, pngHeader...), make([]byte, 100)...)
	if _, err := u.Accept(ctx, "lying.png", 10, bytes.NewReader(big)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("actual size err = %v, want validation", err)
	}
	if _, err := u.Accept(ctx, "empty.png", 0, bytes.NewReader(nil)); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("empty err = %v, want validation", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("stored objects = %d, want 0", len(store.objects))
	}
}

func TestAcceptOversizedStreamNeverStored(t *testing.T) {
	store := newMemStore()
	u := NewUploader(store, 4096, logger.Nop())

	// past the sniffed head, so only the spooled size catches it
	big := append(append([]byte{}, pngHeader...), make([]byte, 8192)...)
	_, err := u.Accept(context.Background(), "lying.png", 100, bytes.NewReader(big))
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if len(store.objects) != 0 {
		t.Fatalf("stored objects = %d, want 0", len(store.objects))
	}
}

func TestAcceptStoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("bucket gone")
	u := NewUploader(store, 0, logger.Nop())

	_, err := u.Accept(context.Background(), "chart.png", int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if apperr.KindOf(err) != apperr.KindProvider {
		t.Fatalf("err = %v, want provider", err)
	}
}

func TestCleanNameAndPublicURL(t *testing.T) {
	if got := cleanName(`..\..\my report (1).xlsx`); got != "my_report__1_.xlsx" {
		t.Fatalf("cleanName = %q", got)
	}
	if got := PublicURL("bucket", "consultant/id/a b.pdf"); got != "https://storage.googleapis.com/bucket/consultant/id/a%20b.pdf" {
		t.Fatalf("PublicURL = %q", got)
	}
}
