package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/fetch"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/viewer"
)

// ErrMissingAsset indicates a catalog row with neither a download link nor a
// 3D file reference.
var ErrMissingAsset = errors.New("no resolvable asset reference")

// ErrImportNotFound indicates the viewer accepted an import but no new
// object identity appeared in the scene afterwards.
var ErrImportNotFound = errors.New("no imported object found in scene")

// Cache memoizes asset blobs and imported scene objects by resolved URL.
type Cache struct {
	basePath string
	client   *fetch.Client
	viewer   viewer.Viewer
	log      *zap.Logger

	group singleflight.Group

	mu       sync.Mutex
	blobs    map[string][]byte
	objects  map[string]*scene.Object
	onImport []func(*scene.Object)
}

// NewCache creates a Cache. basePath prefixes scheme-less asset references
// (see ResolveURL).
func NewCache(basePath string, client *fetch.Client, v viewer.Viewer, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		basePath: basePath,
		client:   client,
		viewer:   v,
		log:      log,
		blobs:    make(map[string][]byte),
		objects:  make(map[string]*scene.Object),
	}
}

// OnImport registers a hook invoked once per newly imported object, before
// GetOrImport returns it. Hooks accumulate and run in registration order;
// the applier registers one to keep the scene index current. Register before
// the first GetOrImport.
func (c *Cache) OnImport(fn func(*scene.Object)) {
	c.onImport = append(c.onImport, fn)
}

// ResolveURL derives the asset URL from a catalog row: "download_link" is
// preferred, "_3d_file" is the fallback. A value without a scheme separator
// that is not an explicit path (leading "/", "./" or "../") is rewritten
// under the cache's asset base path.
func (c *Cache) ResolveURL(row catalog.Row) (string, error) {
	ref := row["download_link"]
	if ref == "" {
		ref = row["_3d_file"]
	}
	if ref == "" {
		return "", fmt.Errorf("%w: catalog row %q", ErrMissingAsset, row.Name())
	}

	return ResolveRef(c.basePath, ref), nil
}

// ResolveRef rewrites a bare file reference under basePath. Absolute URLs
// and explicit paths pass through unchanged.
func ResolveRef(basePath, ref string) string {
	if strings.Contains(ref, "://") ||
		strings.HasPrefix(ref, "/") ||
		strings.HasPrefix(ref, "./") ||
		strings.HasPrefix(ref, "../") {
		return ref
	}
	return strings.TrimRight(basePath, "/") + "/" + ref
}

// GetOrImport returns the imported object for url, importing it on first
// use. name labels the import in the viewer; when empty the URL's base name
// is used. Safe for concurrent use; per URL only one fetch and one import
// ever happen.
func (c *Cache) GetOrImport(ctx context.Context, assetURL, name string) (*scene.Object, error) {
	if obj := c.cachedObject(assetURL); obj != nil {
		c.log.Debug("asset cache hit", zap.String("url", assetURL))
		return obj, nil
	}

	v, err, _ := c.group.Do(assetURL, func() (any, error) {
		if obj := c.cachedObject(assetURL); obj != nil {
			return obj, nil
		}
		return c.importAsset(ctx, assetURL, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*scene.Object), nil
}

func (c *Cache) importAsset(ctx context.Context, assetURL, name string) (*scene.Object, error) {
	before, err := c.viewer.Objects(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot scene before import: %w", err)
	}
	snapshot := scene.Identities(before)

	blob, err := c.blob(ctx, assetURL)
	if err != nil {
		return nil, err
	}

	filename := importFileName(assetURL, name)
	if err := c.viewer.ImportFiles(ctx, filename, blob, viewer.ImportModeAdd); err != nil {
		return nil, fmt.Errorf("import %s: %w", filename, err)
	}

	after, err := c.viewer.Objects(ctx)
	if err != nil {
		return nil, fmt.Errorf("read scene after import: %w", err)
	}

	var imported *scene.Object
	for _, o := range scene.Flatten(after) {
		id := o.Identity()
		if id == "" {
			continue
		}
		if _, known := snapshot[id]; !known {
			imported = o
			break
		}
	}
	if imported == nil {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, assetURL)
	}

	c.mu.Lock()
	c.objects[assetURL] = imported
	c.mu.Unlock()

	c.log.Info("asset imported",
		zap.String("url", assetURL),
		zap.String("file", filename),
		zap.String("object", imported.Identity()))

	for _, hook := range c.onImport {
		hook(imported)
	}
	return imported, nil
}

// blob returns the asset bytes for url, fetching at most once per URL even
// when the imported-object cache misses (e.g. two rows sharing one file).
func (c *Cache) blob(ctx context.Context, assetURL string) ([]byte, error) {
	c.mu.Lock()
	data, ok := c.blobs[assetURL]
	c.mu.Unlock()
	if ok {
		return data, nil
	}

	data, err := c.client.Get(ctx, assetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}

	c.mu.Lock()
	c.blobs[assetURL] = data
	c.mu.Unlock()
	return data, nil
}

func (c *Cache) cachedObject(assetURL string) *scene.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objects[assetURL]
}

// Stats returns the number of cached blobs and imported objects.
func (c *Cache) Stats() (blobs, objects int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blobs), len(c.objects)
}

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// importFileName builds the file name handed to the viewer import: the
// sanitized row name when present, otherwise the URL base name, always
// keeping the URL's file extension so the viewer picks the right loader.
func importFileName(assetURL, name string) string {
	base := assetURL
	if u, err := url.Parse(assetURL); err == nil && u.Path != "" {
		base = u.Path
	}
	base = path.Base(base)
	ext := path.Ext(base)

	if name == "" {
		return base
	}
	clean := invalidFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if clean == "" {
		return base
	}
	if !strings.HasSuffix(strings.ToLower(clean), strings.ToLower(ext)) {
		clean += ext
	}
	return clean
}
