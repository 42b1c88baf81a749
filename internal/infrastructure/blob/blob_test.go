package blob_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/labstock-api/internal/infrastructure/blob"
	"github.com/jhoicas/labstock-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sistema de archivos
// ──────────────────────────────────────────────────────────────────────────────

func TestFilesystem_PutEscribeBajoLaRaiz(t *testing.T) {
	root := t.TempDir()
	store, err := blob.NewFilesystem(root)
	require.NoError(t, err)

	location, err := store.Put(context.Background(), "stock-balances/2024/07/09/r.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "stock-balances", "2024", "07", "09", "r.pdf"), location)
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestFilesystem_RechazaClavesInvalidas(t *testing.T) {
	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "/etc/passwd", "../fuera.pdf", "a/../../b.pdf"} {
		_, err := store.Put(context.Background(), key, "", []byte("x"))
		assert.Error(t, err, "clave %q", key)
	}
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := blob.Open(context.Background(), config.ReportsConfig{Driver: "ftp"})

	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// S3 contra un transporte HTTP falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{}}, nil
	}
	body, _ := io.ReadAll(req.Body)
	path := strings.TrimPrefix(req.URL.Path, "/")
	f.objects[path] = string(body)
	f.types[path] = req.Header.Get("Content-Type")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("")), Header: http.Header{"Etag": {`"etag"`}}}, nil
}

func TestS3_PutSubeAlBucket(t *testing.T) {
	rt := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store, err := blob.NewS3(context.Background(), blob.S3Config{
		Bucket:          "reportes",
		Endpoint:        "https://s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		ClientOptions: []func(*s3.Options){func(o *s3.Options) {
			o.HTTPClient = &http.Client{Transport: rt}
		}},
	})
	require.NoError(t, err)

	location, err := store.Put(context.Background(), "stock-balances/r.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "s3://reportes/stock-balances/r.pdf", location)
	require.Contains(t, rt.objects, "reportes/stock-balances/r.pdf")
	assert.Contains(t, rt.objects["reportes/stock-balances/r.pdf"], "%PDF")
	assert.Equal(t, "application/pdf", rt.types["reportes/stock-balances/r.pdf"])
}

func TestS3_BucketRequerido(t *testing.T) {
	_, err := blob.NewS3(context.Background(), blob.S3Config{})

	assert.Error(t, err)
}
