package imaging

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage writes a uniformly colored PNG into a temp directory and
// returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, createInMemoryImage(width, height, c)))
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	require.NotNil(t, cache)
	assert.Zero(t, cache.Len())
}

func TestImageCache_Load(t *testing.T) {
	path := createTestImage(t, 100, 50, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	assert.Equal(t, 1, cache.Len())

	// A second load is served from memory even after the file is gone.
	require.NoError(t, os.Remove(path))
	again, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, img, again)
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, cache.Len())
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := NewImageCache().Load(path)
	require.ErrorIs(t, err, image.ErrFormat)
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	first := createTestImage(t, 10, 10, color.White)
	second := createTestImage(t, 20, 20, color.Black)
	cache := NewImageCache()

	_, err := cache.Load(first)
	require.NoError(t, err)
	_, err = cache.Load(second)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Evict(first)
	assert.Equal(t, 1, cache.Len())
	cache.Evict("never-loaded.png")
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Zero(t, cache.Len())
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	path := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := cache.Load(path)
			assert.NoError(t, err)
			assert.NotNil(t, img)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
}

func TestImageCache_Info(t *testing.T) {
	pngPath := createTestImage(t, 64, 32, color.White)

	jpegPath := filepath.Join(t.TempDir(), "photo.jpg")
	f, err := os.Create(jpegPath)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, createInMemoryImage(8, 16, color.Black), nil))
	require.NoError(t, f.Close())

	cache := NewImageCache()

	info, err := cache.Info(pngPath)
	require.NoError(t, err)
	assert.Equal(t, &SourceInfo{Width: 64, Height: 32, Format: "png"}, info)

	info, err = cache.Info(jpegPath)
	require.NoError(t, err)
	assert.Equal(t, &SourceInfo{Width: 8, Height: 16, Format: "jpeg"}, info)

	_, err = cache.Info(filepath.Join(t.TempDir(), "missing.gif"))
	require.Error(t, err)
}
