package assets

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdfstruct/pdfstruct/pkg/buildinfo"
	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
	"github.com/pdfstruct/pdfstruct/pkg/httputil"
	"github.com/pdfstruct/pdfstruct/pkg/observability"
)

// downloadTimeout bounds a single asset download. Trained data files are
// tens of megabytes, so this is generous.
const downloadTimeout = 5 * time.Minute

// verifyMemoTTL bounds how long a digest check is remembered. Within the
// window an unchanged file (same size and mtime) is not re-hashed.
const verifyMemoTTL = 24 * time.Hour

// Status describes the provisioning outcome for a single asset.
type Status struct {
	Asset      Asset
	Path       string
	Downloaded bool  // false when the file was already present
	Size       int64 // size on disk after provisioning
}

// Provisioner ensures model assets exist and are intact in a local directory.
type Provisioner struct {
	dir      string
	manifest Manifest
	client   *http.Client
	logger   *log.Logger
	keyer    cache.Keyer
	memo     *httputil.Cache
}

// NewProvisioner creates a provisioner for the given model directory and
// manifest. A nil logger discards output.
func NewProvisioner(dir string, manifest Manifest, logger *log.Logger) *Provisioner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	// The memo is best effort; without it every check re-hashes the file.
	memo, err := httputil.NewCache(filepath.Join(dir, ".verify-cache"), verifyMemoTTL)
	if err != nil {
		memo = nil
	} else {
		memo = memo.Namespace("assets:")
	}
	return &Provisioner{
		dir:      dir,
		manifest: manifest,
		client:   &http.Client{Timeout: downloadTimeout},
		logger:   logger,
		keyer:    cache.NewDefaultKeyer(),
		memo:     memo,
	}
}

// verifiedEntry records the file identity seen at the last successful
// digest check.
type verifiedEntry struct {
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (p *Provisioner) isVerified(a Asset, info os.FileInfo) bool {
	if p.memo == nil {
		return false
	}
	var e verifiedEntry
	ok, err := p.memo.Get(p.keyer.AssetKey(a.Name, a.URL), &e)
	return err == nil && ok && e.Size == info.Size() && e.ModTime.Equal(info.ModTime())
}

func (p *Provisioner) markVerified(a Asset, info os.FileInfo) {
	if p.memo == nil {
		return
	}
	key := p.keyer.AssetKey(a.Name, a.URL)
	_ = p.memo.Set(key, verifiedEntry{Size: info.Size(), ModTime: info.ModTime()})
}

// Dir returns the model directory.
func (p *Provisioner) Dir() string { return p.dir }

// Manifest returns the manifest this provisioner was built with.
func (p *Provisioner) Manifest() Manifest { return p.manifest }

// Path returns the on-disk location for a named asset.
func (p *Provisioner) Path(name string) string {
	return filepath.Join(p.dir, name)
}

// Ensure downloads every missing asset and verifies digests where the
// manifest declares one. Already-present assets with a matching digest are
// left untouched. The first failure aborts the run with an
// ASSET_PROVISIONING error; nothing else is attempted.
func (p *Provisioner) Ensure(ctx context.Context) ([]Status, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssetProvisioning, err, "create model directory %s", p.dir)
	}

	statuses := make([]Status, 0, len(p.manifest.Assets))
	for _, a := range p.manifest.Assets {
		st, err := p.ensureOne(ctx, a)
		if err != nil {
			return statuses, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

func (p *Provisioner) ensureOne(ctx context.Context, a Asset) (Status, error) {
	dest := p.Path(a.Name)

	if info, err := os.Stat(dest); err == nil {
		if p.isVerified(a, info) {
			p.logger.Debug("asset present", "name", a.Name, "size", info.Size())
			return Status{Asset: a, Path: dest, Size: info.Size()}, nil
		}
		if err := httputil.VerifyFile(dest, a.SHA256); err == nil {
			p.markVerified(a, info)
			p.logger.Debug("asset present", "name", a.Name, "size", info.Size())
			return Status{Asset: a, Path: dest, Size: info.Size()}, nil
		}
		// Digest mismatch: treat as corrupt and re-download.
		p.logger.Warn("asset corrupt, re-downloading", "name", a.Name)
		_ = os.Remove(dest)
	}

	p.logger.Info("downloading model asset", "name", a.Name, "url", a.URL)
	start := time.Now()
	observability.Assets().OnDownloadStart(ctx, a.Name, a.URL)
	err := httputil.RetryWithBackoff(ctx, func() error {
		return httputil.Download(ctx, a.URL, dest, httputil.DownloadOptions{
			SHA256:    a.SHA256,
			Client:    p.client,
			UserAgent: buildinfo.UserAgent(),
		})
	})
	if err != nil {
		observability.Assets().OnDownloadComplete(ctx, a.Name, 0, time.Since(start), err)
		return Status{}, errors.Wrap(errors.ErrCodeAssetProvisioning, err, "download %s", a.Name)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return Status{}, errors.Wrap(errors.ErrCodeAssetProvisioning, err, "stat %s", dest)
	}
	observability.Assets().OnDownloadComplete(ctx, a.Name, info.Size(), time.Since(start), nil)
	p.markVerified(a, info)
	return Status{Asset: a, Path: dest, Downloaded: true, Size: info.Size()}, nil
}

// Verify checks that every manifest asset exists on disk with a matching
// digest. It does not download anything.
func (p *Provisioner) Verify(ctx context.Context) error {
	for _, a := range p.manifest.Assets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dest := p.Path(a.Name)
		info, err := os.Stat(dest)
		if err != nil {
			observability.Assets().OnVerify(ctx, a.Name, false)
			return errors.Wrap(errors.ErrCodeAssetProvisioning, err, "asset %s missing", a.Name)
		}
		if p.isVerified(a, info) {
			observability.Assets().OnVerify(ctx, a.Name, true)
			continue
		}
		if err := httputil.VerifyFile(dest, a.SHA256); err != nil {
			observability.Assets().OnVerify(ctx, a.Name, false)
			return errors.Wrap(errors.ErrCodeAssetProvisioning, err, "asset %s corrupt", a.Name)
		}
		p.markVerified(a, info)
		observability.Assets().OnVerify(ctx, a.Name, true)
	}
	return nil
}
