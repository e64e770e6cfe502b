package pkgmedia

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "uploads/1/data.csv", want: "uploads/1/data.csv"},
		{key: "uploads//1/./data.csv", want: "uploads/1/data.csv"},
		{key: "", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "../secret", wantErr: true},
		{key: "uploads/../../secret", wantErr: true},
		{key: "a\\b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "price_usd", SafeName("price usd"))
	assert.Equal(t, "a_b_c", SafeName("a/b\\c"))
	assert.Equal(t, "unnamed", SafeName(".."))
	assert.Equal(t, "unnamed", SafeName(""))
	assert.Equal(t, "data.csv", SafeName("data.csv"))
	assert.Equal(t, "caf_", SafeName("café"))
}

func TestLocalLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	key := "uploads/1/data.csv"
	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Open(ctx, key)
	assert.True(t, IsNotExist(err))

	require.NoError(t, store.Save(ctx, key, strings.NewReader("a,b\n1,2\n"), 8, "text/csv"))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "a,b\n1,2\n", string(body))

	require.NoError(t, store.Save(ctx, key, strings.NewReader("x\n"), 2, "text/csv"), "overwrite")
	rc, err = store.Open(ctx, key)
	require.NoError(t, err)
	body, _ = io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "x\n", string(body))

	entries, err := os.ReadDir(filepath.Join(store.Root(), "uploads", "1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not linger")

	require.NoError(t, store.Remove(ctx, key))
	require.NoError(t, store.Remove(ctx, key), "removing twice is not an error")

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalDirectoryIsNotAnObject(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "histograms/7/histogram_a.png", strings.NewReader("png"), 3, "image/png"))

	exists, err := store.Exists(ctx, "histograms/7")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Open(ctx, "histograms/7")
	assert.True(t, IsNotExist(err))
}

func TestLocalRemovePrefix(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "histograms/7/histogram_a.png", strings.NewReader("a"), 1, "image/png"))
	require.NoError(t, store.Save(ctx, "histograms/7/histogram_b.png", strings.NewReader("b"), 1, "image/png"))
	require.NoError(t, store.Save(ctx, "histograms/8/histogram_a.png", strings.NewReader("c"), 1, "image/png"))

	require.NoError(t, store.RemovePrefix(ctx, "histograms/7"))
	require.NoError(t, store.RemovePrefix(ctx, "histograms/7"))

	exists, err := store.Exists(ctx, "histograms/7/histogram_a.png")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, "histograms/8/histogram_a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.ErrorIs(t, store.RemovePrefix(ctx, "../"), ErrInvalidKey)
}

func TestLocalURL(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	assert.Equal(t, "/media/histograms/1/histogram_a.png", store.URL("histograms/1/histogram_a.png"))
	assert.Equal(t, "/media/a%20b/c%3Fd.png", store.URL("a b/c?d.png"))
}

func TestNormaliseEndpoint(t *testing.T) {
	endpoint, secure, err := normaliseEndpoint("minio:9000")
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", endpoint)
	assert.False(t, secure)

	endpoint, secure, err = normaliseEndpoint("https://s3.example.com")
	require.NoError(t, err)
	assert.Equal(t, "s3.example.com", endpoint)
	assert.True(t, secure)

	_, _, err = normaliseEndpoint("https://s3.example.com/bucket")
	assert.Error(t, err)

	_, _, err = normaliseEndpoint("  ")
	assert.Error(t, err)
}

func TestNewMinIORequiresConfig(t *testing.T) {
	_, err := NewMinIO(context.Background(), MinIOConfig{Endpoint: "minio:9000"})
	assert.Error(t, err)
}
