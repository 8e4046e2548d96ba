// Package osm downloads OSM shapefile extracts into the analysis workspace.
package osm

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verdantcity/greenspace-cli/internal/resilience"
)

// shapefileExts are the sidecar files a shapefile layer consists of.
var shapefileExts = map[string]bool{
	".shp": true,
	".shx": true,
	".dbf": true,
	".prj": true,
	".cpg": true,
}

// Downloader fetches extract ZIP archives with retry and a polite
// per-host rate limit.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewDownloader creates a Downloader limited to maxRPS requests per second.
// maxRPS <= 0 disables rate limiting.
func NewDownloader(maxRPS float64) *Downloader {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if maxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(maxRPS), 1)
	}
	return &Downloader{
		client:  &http.Client{Timeout: 10 * time.Minute},
		limiter: limiter,
		retry:   resilience.DefaultRetryConfig(),
	}
}

// FetchExtract downloads an extract ZIP and unpacks its shapefile layers
// into the workspace directory. Returns the extracted .shp paths. The ZIP
// is kept next to the workspace and reused on subsequent calls.
func (d *Downloader) FetchExtract(ctx context.Context, rawURL, workspace string) ([]string, error) {
	log := zap.L().With(
		zap.String("component", "osm.download"),
		zap.String("url", rawURL),
	)

	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, eris.Wrap(err, "osm: create workspace")
	}

	// Query strings (signed URLs) must not leak into the archive name.
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "osm: parse url %s", rawURL)
	}
	zipName := path.Base(u.Path)
	if !strings.HasSuffix(zipName, ".zip") {
		return nil, eris.Errorf("osm: url %s does not point to a zip archive", rawURL)
	}
	zipPath := filepath.Join(workspace, zipName)

	// Skip download if the ZIP already exists with content.
	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("zip already exists, skipping download", zap.String("path", zipPath))
	} else {
		log.Info("downloading extract")
		err := resilience.Do(ctx, withRetryLog(d.retry, "fetch_extract"), func(ctx context.Context) error {
			return d.downloadFile(ctx, rawURL, zipPath)
		})
		if err != nil {
			return nil, eris.Wrap(err, "osm: download extract")
		}
	}

	shpPaths, err := extractShapefiles(zipPath, workspace)
	if err != nil {
		return nil, err
	}
	if len(shpPaths) == 0 {
		return nil, eris.Errorf("osm: archive %s contains no shapefiles", zipName)
	}

	log.Info("extract unpacked", zap.Int("layers", len(shpPaths)))
	return shpPaths, nil
}

// downloadFile downloads a URL to a local file, honoring the rate limit.
// Server-side failures are marked transient so the retry wrapper picks
// them up.
func (d *Downloader) downloadFile(ctx context.Context, rawURL, dest string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("download returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		// A truncated download must not be mistaken for a cached ZIP.
		_ = os.Remove(dest)
		return eris.Wrap(err, "write file")
	}

	return nil
}

// extractShapefiles unpacks shapefile sidecar files from a ZIP into destDir,
// flattening any directory structure. Returns the .shp paths.
func extractShapefiles(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "osm: open zip")
	}
	defer r.Close() //nolint:errcheck

	var shpPaths []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(f.Name)
		ext := strings.ToLower(filepath.Ext(name))
		if !shapefileExts[ext] {
			continue
		}

		destPath := filepath.Join(destDir, name)
		if err := extractFile(f, destPath); err != nil {
			return nil, err
		}

		if ext == ".shp" {
			shpPaths = append(shpPaths, destPath)
		}
	}

	return shpPaths, nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "osm: open zip entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrapf(err, "osm: create %s", destPath)
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "osm: extract %s", f.Name)
	}
	return nil
}

func withRetryLog(cfg resilience.RetryConfig, operation string) resilience.RetryConfig {
	cfg.OnRetry = resilience.RetryLogger("osm", operation)
	return cfg
}
