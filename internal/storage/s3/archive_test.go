package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/config"
	"terroir/internal/port"
	s3archive "terroir/internal/storage/s3"
)

// fakeS3 records path-style object requests.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestArchive_UploadAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	store, err := s3archive.NewArchive(context.Background(), &config.S3Config{
		Region:    "eu-west-3",
		Bucket:    "imports",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	raw := `{"dimensions": {}}`
	out, err := store.Upload(context.Background(), port.UploadInput{
		Key:         "imports/t-1/d-1/raw.txt",
		Body:        strings.NewReader(raw),
		ContentType: "text/plain; charset=utf-8",
		Size:        int64(len(raw)),
	})
	require.NoError(t, err)
	assert.Equal(t, `"etag-1"`, out.ETag)
	require.Contains(t, fake.objects, "/imports/imports/t-1/d-1/raw.txt")
	assert.Contains(t, fake.objects["/imports/imports/t-1/d-1/raw.txt"], raw)

	require.NoError(t, store.Delete(context.Background(), "", "imports/t-1/d-1/raw.txt"))
	assert.Equal(t, []string{"/imports/imports/t-1/d-1/raw.txt"}, fake.deleted)
}
