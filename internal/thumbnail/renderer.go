package thumbnail

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"love-letter/internal/logging"
	"love-letter/internal/metrics"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp" // decode-only; encoding goes through chai2010/webp
)

const webpQuality = 75

// Renderer produces WebP thumbnails from image files on disk.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Generate writes a thumbnail for sourcePath into destDir as
// "{baseName}-thumb.webp" and returns its absolute path. The longest edge
// is scaled down to maxEdge; smaller images are re-encoded without
// upscaling. Any failure (missing source, decode error, write error) is
// soft: Generate logs it and returns ("", false), never an error.
func (r *Renderer) Generate(sourcePath, destDir, baseName string, maxEdge int) (string, bool) {
	if strings.TrimSpace(sourcePath) == "" {
		return "", false
	}
	if _, err := os.Stat(sourcePath); err != nil {
		logging.Debug("Thumbnail source missing: %s", sourcePath)
		return "", false
	}

	start := time.Now()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		logging.Warn("Failed to create thumbnail directory %s: %v", destDir, err)
		return "", false
	}
	targetPath := filepath.Join(destDir, baseName+"-thumb.webp")

	img, err := imaging.Open(sourcePath)
	if err != nil {
		logging.Warn("Failed to decode %s: %v", sourcePath, err)
		return "", false
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}

	if longest > maxEdge {
		ratio := float64(maxEdge) / float64(longest)
		w := int(math.Round(float64(width) * ratio))
		h := int(math.Round(float64(height) * ratio))
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	out, err := os.Create(targetPath)
	if err != nil {
		logging.Warn("Failed to create thumbnail file %s: %v", targetPath, err)
		return "", false
	}

	if err := webp.Encode(out, img, &webp.Options{Quality: webpQuality}); err != nil {
		logging.Warn("Failed to encode thumbnail %s: %v", targetPath, err)
		_ = out.Close()
		_ = os.Remove(targetPath)
		return "", false
	}
	if err := out.Close(); err != nil {
		logging.Warn("Failed to close thumbnail file %s: %v", targetPath, err)
		_ = os.Remove(targetPath)
		return "", false
	}

	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Thumbnail written: %s (%v)", targetPath, time.Since(start))
	return targetPath, true
}

// RelativePath converts an absolute path under webRoot into the
// root-relative forward-slash form stored in the database. Paths outside
// webRoot are returned with slashes normalized and no leading slash.
func RelativePath(webRoot, absPath string) string {
	rel, err := filepath.Rel(webRoot, absPath)
	if err != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)
	rel = strings.ReplaceAll(rel, "\\", "/")
	return strings.TrimPrefix(rel, "/")
}
