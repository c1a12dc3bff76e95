package artwork

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"

	// Register the webp decoder so cover.webp files can be opened.
	_ "golang.org/x/image/webp"

	"filetree-search/internal/logging"
	"filetree-search/internal/mediatypes"
	"filetree-search/internal/metrics"
)

// ThumbnailSize is the edge length of generated thumbnails, in pixels.
const ThumbnailSize = 128

// ErrNotFound is returned when neither a cover file nor embedded artwork
// exists for a track.
var ErrNotFound = errors.New("no artwork found")

// coverNames are the conventional base names for album art files, in
// precedence order.
var coverNames = []string{"cover", "folder", "front", "album"}

// Cache generates and stores square thumbnails for album artwork.
type Cache struct {
	dir string
}

// New creates a thumbnail cache rooted at dir, creating it if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artwork cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Thumbnail returns the path of a cached thumbnail for the given track,
// generating it on first access. Artwork is looked up as a cover file in
// the track's directory first, then as a picture embedded in the track's
// tags. Returns ErrNotFound when the track has neither.
func (c *Cache) Thumbnail(trackPath string) (string, error) {
	cover := FindCover(filepath.Dir(trackPath))

	source := cover
	if source == "" {
		// Key embedded artwork by the track itself.
		source = trackPath
	}

	info, err := os.Stat(source)
	if err != nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to stat artwork source: %w", err)
	}

	cached := filepath.Join(c.dir, cacheKey(source, info.ModTime())+".jpg")
	if _, err := os.Stat(cached); err == nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}

	start := time.Now()

	var img image.Image
	if cover != "" {
		img, err = imaging.Open(cover, imaging.AutoOrientation(true))
		if err != nil {
			metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("failed to open cover %s: %w", cover, err)
		}
	} else {
		img, err = embeddedPicture(trackPath)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				metrics.ArtworkRequestsTotal.WithLabelValues("not_found").Inc()
			} else {
				metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
			}
			return "", err
		}
	}

	thumb := imaging.Thumbnail(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	if err := imaging.Save(thumb, cached, imaging.JPEGQuality(85)); err != nil {
		metrics.ArtworkRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	metrics.ArtworkRequestsTotal.WithLabelValues("miss").Inc()
	metrics.ArtworkGenerationDuration.Observe(time.Since(start).Seconds())
	c.updateCacheMetrics()

	logging.Debug("Generated %dpx thumbnail for %s in %v",
		ThumbnailSize, trackPath, time.Since(start))
	return cached, nil
}

// FindCover returns the path of the album art file in dir, or "" when the
// directory has none. Base names are matched case-insensitively.
func FindCover(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	best := len(coverNames)
	found := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := mediatypes.ArtworkExtensions[ext]; !ok {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		for i, candidate := range coverNames {
			if base == candidate && i < best {
				best = i
				found = filepath.Join(dir, name)
			}
		}
	}
	return found
}

// embeddedPicture decodes the artwork embedded in the track's tags.
func embeddedPicture(trackPath string) (image.Image, error) {
	f, err := os.Open(trackPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil, ErrNotFound
	}
	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, ErrNotFound
	}

	img, err := imaging.Decode(bytes.NewReader(pic.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded artwork: %w", err)
	}
	return img, nil
}

func cacheKey(source string, modTime time.Time) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", source, modTime.UnixNano())))
	return hex.EncodeToString(h[:16])
}

// updateCacheMetrics walks the cache directory and publishes its size.
func (c *Cache) updateCacheMetrics() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	var total int64
	count := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		count++
	}
	metrics.ArtworkCacheSize.Set(float64(total))
	metrics.ArtworkCacheCount.Set(float64(count))
}
