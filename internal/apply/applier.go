package apply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/assets"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/config"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/match"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/viewer"
)

// Applier turns selections into scene mutations.
//
// Applier methods are idempotent for identical inputs but mutate the shared
// active-object state, so calls must not overlap; the controller serializes
// them.
type Applier struct {
	catalog *catalog.Catalog
	mapping *config.Mapping
	cache   *assets.Cache
	viewer  viewer.Viewer
	index   *scene.Index
	log     *zap.Logger

	// active records, per application, the objects considered active for
	// the most recent successful apply: what to hide before the next one.
	active map[string][]*scene.Object
}

// New creates an Applier and registers a cache OnImport hook extending the
// scene index, so lookups keep reflecting the live scene after imports.
// Hooks registered by other cache consumers are unaffected.
func New(cat *catalog.Catalog, mapping *config.Mapping, cache *assets.Cache, v viewer.Viewer, index *scene.Index, log *zap.Logger) *Applier {
	if log == nil {
		log = zap.NewNop()
	}
	cache.OnImport(func(o *scene.Object) { index.Extend(o) })
	return &Applier{
		catalog: cat,
		mapping: mapping,
		cache:   cache,
		viewer:  v,
		index:   index,
		log:     log,
		active:  make(map[string][]*scene.Object),
	}
}

// Apply routes the selection to the material or variant path based on the
// application's classification in the mapping.
func (a *Applier) Apply(ctx context.Context, application, option string) error {
	if a.mapping.IsVariant(application) {
		return a.ApplyVariant(ctx, application, option)
	}
	return a.ApplyMaterial(ctx, application, option)
}

// ActiveObjects returns the identities of the objects currently recorded
// active for the application. Diagnostic use only.
func (a *Applier) ActiveObjects(application string) []string {
	var ids []string
	for _, o := range a.active[application] {
		ids = append(ids, o.Identity())
	}
	return ids
}

// ApplyMaterial applies a material-style selection: import the mapped asset
// and bind its matched material to every target object.
func (a *Applier) ApplyMaterial(ctx context.Context, application, option string) error {
	ref, ok := a.mapping.Material(application, option)
	if !ok {
		return fmt.Errorf("%w: %s / %s", ErrMappingNotFound, application, option)
	}

	row, ok := a.catalog.Lookup(ref.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrCatalogRowNotFound, ref.Name)
	}

	a.hidePrevious(ctx, application)

	assetURL, err := a.cache.ResolveURL(row)
	if err != nil {
		return err
	}
	imported, err := a.cache.GetOrImport(ctx, assetURL, row.Name())
	if err != nil {
		return err
	}

	targetName := ref.Color
	if targetName == "" {
		targetName = ref.Name
	}
	matched, ok := match.Material(imported.Materials, targetName, ref.Color)
	if !ok {
		if len(imported.Materials) == 0 {
			return fmt.Errorf("%w: %s", ErrNoMaterialAvailable, assetURL)
		}
		matched = imported.Materials[0]
		a.log.Warn("no material matched, using first slot",
			zap.String("application", application),
			zap.String("target", targetName),
			zap.String("fallback", matched.Name))
	}

	names := a.mapping.ObjectNames[application]
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTargetObjects, application)
	}
	targets := a.index.LookupAll(names)

	bound := a.bindAll(ctx, targets, matched, imported.Materials)
	if bound == 0 {
		return fmt.Errorf("%w: %s / %s", ErrApplyFailed, application, option)
	}

	a.active[application] = []*scene.Object{imported}

	a.log.Info("selection applied",
		zap.String("application", application),
		zap.String("option", option),
		zap.String("material", matched.Name),
		zap.Int("objects", bound))
	return nil
}

// bindAll binds mat to every target, retrying each failure once with the
// imported object's first material when distinct. Returns the success count.
func (a *Applier) bindAll(ctx context.Context, targets []*scene.Object, mat scene.Material, slots []scene.Material) int {
	bound := 0
	for _, target := range targets {
		id := target.Identity()
		err := a.viewer.AddOrEditMaterial(ctx, id, mat)
		if err != nil && len(slots) > 0 && slots[0] != mat {
			a.log.Warn("bind failed, retrying with first material",
				zap.String("object", id),
				zap.String("material", mat.Name),
				zap.Error(err))
			err = a.viewer.AddOrEditMaterial(ctx, id, slots[0])
		}
		if err != nil {
			a.log.Warn("bind failed, skipping object",
				zap.String("object", id),
				zap.Error(err))
			continue
		}
		bound++
	}
	return bound
}

// hidePrevious hides whatever was active for the application. Best effort:
// failures are logged, never escalated.
func (a *Applier) hidePrevious(ctx context.Context, application string) {
	prev := a.active[application]
	if len(prev) == 0 {
		return
	}
	var ids []string
	for _, o := range prev {
		if id := o.Identity(); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := a.viewer.ToggleVisibility(ctx, ids, false); err != nil {
		a.log.Warn("failed to hide previous objects",
			zap.String("application", application),
			zap.Strings("ids", ids),
			zap.Error(err))
	}
}

// ApplyVariant applies a variant-style selection: switch the active object
// of every configuration-state entry the application targets.
func (a *Applier) ApplyVariant(ctx context.Context, application, option string) error {
	ref, ok := a.mapping.Material(application, option)
	if !ok {
		return fmt.Errorf("%w: %s / %s", ErrMappingNotFound, application, option)
	}

	value := ref.Color
	if value == "" {
		value = ref.Name
	}
	if value == "" {
		value = option
	}

	names := a.mapping.ObjectNames[application]
	if len(names) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTargetObjects, application)
	}
	targeted := make(map[string]struct{}, len(names))
	for _, n := range names {
		targeted[n] = struct{}{}
	}

	entries, err := a.viewer.ConfigurationState(ctx)
	if err != nil {
		return fmt.Errorf("read configuration state: %w", err)
	}

	changed := 0
	for i := range entries {
		if _, ok := targeted[entries[i].Variant]; !ok {
			continue
		}
		entries[i].ActiveObject = value
		entries[i].ActiveObjectInstanceID = ""
		changed++
	}

	// The variant may simply not exist in the current configuration; that
	// is a no-op, not a failure.
	if changed == 0 {
		a.log.Info("variant not present in configuration state",
			zap.String("application", application),
			zap.String("variant", value))
		return nil
	}

	if err := a.viewer.SetConfigurationState(ctx, entries); err != nil {
		return fmt.Errorf("write configuration state: %w", err)
	}

	a.log.Info("variant applied",
		zap.String("application", application),
		zap.String("option", option),
		zap.String("variant", value),
		zap.Int("entries", changed))
	return nil
}
