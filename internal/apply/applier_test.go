package apply

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/assets"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/config"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/fetch"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/viewer"
)

type bindCall struct {
	objectID string
	material scene.Material
}

// fakeViewer records every mutation and grows its scene on import.
type fakeViewer struct {
	mu    sync.Mutex
	roots []*scene.Object

	// materials to put on the next imported object
	importMaterials []scene.Material

	binds       []bindCall
	bindErrs    map[string]error // objectID -> error for every bind attempt
	hidden      [][]string
	hideErr     error
	configState []viewer.ConfigEntry
	setCalls    int
	imports     int
}

func (f *fakeViewer) Init(context.Context) error { return nil }

func (f *fakeViewer) Objects(context.Context) ([]*scene.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*scene.Object(nil), f.roots...), nil
}

func (f *fakeViewer) ImportFiles(_ context.Context, filename string, _ []byte, _ viewer.ImportMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports++
	f.roots = append(f.roots, &scene.Object{
		ID:        fmt.Sprintf("imported-%d", f.imports),
		Name:      filename,
		Materials: f.importMaterials,
	})
	return nil
}

func (f *fakeViewer) ToggleVisibility(_ context.Context, ids []string, visible bool) error {
	if !visible {
		f.hidden = append(f.hidden, ids)
	}
	return f.hideErr
}

func (f *fakeViewer) AddOrEditMaterial(_ context.Context, objectID string, mat scene.Material) error {
	f.binds = append(f.binds, bindCall{objectID: objectID, material: mat})
	if err, ok := f.bindErrs[objectID]; ok {
		return err
	}
	return nil
}

func (f *fakeViewer) ConfigurationState(context.Context) ([]viewer.ConfigEntry, error) {
	return append([]viewer.ConfigEntry(nil), f.configState...), nil
}

func (f *fakeViewer) SetConfigurationState(_ context.Context, entries []viewer.ConfigEntry) error {
	f.setCalls++
	f.configState = entries
	return nil
}

type fixture struct {
	applier *Applier
	viewer  *fakeViewer
	srv     *httptest.Server
}

func newFixture(t *testing.T, fv *fakeViewer, mapping *config.Mapping) *fixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("glb-bytes"))
	}))
	t.Cleanup(srv.Close)

	cat := catalog.New(catalog.Parse(
		"name,download_link,color\n" +
			"Corde4," + srv.URL + "/corde4.glb,Corde4_pumpkin\n" +
			"NoFile,,\n"))

	cache := assets.NewCache("/assets/", fetch.NewClient(), fv, nil)
	index := scene.NewIndex(fv.roots)
	applier := New(cat, mapping, cache, fv, index, nil)

	return &fixture{applier: applier, viewer: fv, srv: srv}
}

func seatMapping() *config.Mapping {
	return &config.Mapping{
		Materials: map[string]map[string]config.MaterialRef{
			"Seat": {
				"Pumpkin": {Name: "Corde4", Color: "Corde4_pumpkin"},
				"Broken":  {Name: "DoesNotExist"},
				"NoAsset": {Name: "NoFile"},
			},
		},
		ObjectNames: map[string][]string{
			"Seat": {"SeatPanel"},
		},
	}
}

func seatScene() []*scene.Object {
	return []*scene.Object{
		{ID: "p1", Name: "SeatPanel"},
		{ID: "p2", Name: "SeatPanel"},
	}
}

func TestApplyMaterial_Success(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "Corde4 Pumpkin"}, {Name: "Other"}},
	}
	fx := newFixture(t, fv, seatMapping())

	if err := fx.applier.ApplyMaterial(context.Background(), "Seat", "Pumpkin"); err != nil {
		t.Fatalf("ApplyMaterial: %v", err)
	}

	if len(fv.binds) != 2 {
		t.Fatalf("binds = %d, want one per SeatPanel", len(fv.binds))
	}
	for _, b := range fv.binds {
		// Normalized-name tier: "Corde4_pumpkin" equals "Corde4 Pumpkin".
		if b.material.Name != "Corde4 Pumpkin" {
			t.Errorf("bound %q to %s, want matched material", b.material.Name, b.objectID)
		}
	}

	active := fx.applier.ActiveObjects("Seat")
	if len(active) != 1 || active[0] != "imported-1" {
		t.Errorf("ActiveObjects = %v, want the imported object", active)
	}
}

func TestApplyMaterial_HidesPreviousBestEffort(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "M"}},
	}
	fv.hideErr = errors.New("viewer busy")
	fx := newFixture(t, fv, seatMapping())
	ctx := context.Background()

	if err := fx.applier.ApplyMaterial(ctx, "Seat", "Pumpkin"); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// Second apply must try to hide imported-1 and must not fail when the
	// hide errors.
	if err := fx.applier.ApplyMaterial(ctx, "Seat", "Pumpkin"); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	if len(fv.hidden) != 1 || len(fv.hidden[0]) != 1 || fv.hidden[0][0] != "imported-1" {
		t.Errorf("hidden = %v, want previous active object imported-1", fv.hidden)
	}
}

func TestApplyMaterial_FallbackRetryPerObject(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "First"}, {Name: "Corde4 Pumpkin"}},
	}
	// p1 rejects every bind; p2 accepts.
	fv.bindErrs = map[string]error{"p1": errors.New("rejected")}
	fx := newFixture(t, fv, seatMapping())

	if err := fx.applier.ApplyMaterial(context.Background(), "Seat", "Pumpkin"); err != nil {
		t.Fatalf("ApplyMaterial: %v", err)
	}

	// p1: matched attempt + fallback attempt, p2: matched attempt only.
	if len(fv.binds) != 3 {
		t.Fatalf("bind attempts = %d, want 3", len(fv.binds))
	}
	if fv.binds[1].objectID != "p1" || fv.binds[1].material.Name != "First" {
		t.Errorf("second attempt = %+v, want fallback First on p1", fv.binds[1])
	}
}

func TestApplyMaterial_AllBindsFailKeepsState(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "First"}, {Name: "Second"}},
	}
	fv.bindErrs = map[string]error{"p1": errors.New("no"), "p2": errors.New("no")}
	fx := newFixture(t, fv, seatMapping())
	ctx := context.Background()

	err := fx.applier.ApplyMaterial(ctx, "Seat", "Pumpkin")
	if !errors.Is(err, ErrApplyFailed) {
		t.Fatalf("error = %v, want ErrApplyFailed", err)
	}
	if got := fx.applier.ActiveObjects("Seat"); got != nil {
		t.Errorf("ActiveObjects after failure = %v, want unchanged (empty)", got)
	}
}

func TestApplyMaterial_ErrorTaxonomy(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "M"}},
	}
	fx := newFixture(t, fv, seatMapping())
	ctx := context.Background()

	tests := []struct {
		name        string
		application string
		option      string
		wantErr     error
	}{
		{"unknown application", "Nope", "Pumpkin", ErrMappingNotFound},
		{"unknown option", "Seat", "Nope", ErrMappingNotFound},
		{"catalog row missing", "Seat", "Broken", ErrCatalogRowNotFound},
		{"asset reference missing", "Seat", "NoAsset", assets.ErrMissingAsset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.applier.ApplyMaterial(ctx, tt.application, tt.option)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyMaterial_NoTargetObjects(t *testing.T) {
	mapping := seatMapping()
	mapping.ObjectNames = map[string][]string{}
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: []scene.Material{{Name: "M"}},
	}
	fx := newFixture(t, fv, mapping)

	err := fx.applier.ApplyMaterial(context.Background(), "Seat", "Pumpkin")
	if !errors.Is(err, ErrNoTargetObjects) {
		t.Fatalf("error = %v, want ErrNoTargetObjects", err)
	}
}

func TestApplyMaterial_NoMaterialAvailable(t *testing.T) {
	fv := &fakeViewer{
		roots:           seatScene(),
		importMaterials: nil, // imported object exposes zero slots
	}
	fx := newFixture(t, fv, seatMapping())

	err := fx.applier.ApplyMaterial(context.Background(), "Seat", "Pumpkin")
	if !errors.Is(err, ErrNoMaterialAvailable) {
		t.Fatalf("error = %v, want ErrNoMaterialAvailable", err)
	}
}

func variantMapping() *config.Mapping {
	return &config.Mapping{
		Materials: map[string]map[string]config.MaterialRef{
			"Legs": {
				"Wood":  {Name: "LegsWood", Color: "walnut"},
				"Steel": {Name: "LegsSteel"},
			},
		},
		ObjectNames: map[string][]string{
			"Legs": {"LegsSwitch"},
		},
		VariantApplications: []string{"Legs"},
	}
}

func TestApplyVariant_UpdatesMatchingEntries(t *testing.T) {
	fv := &fakeViewer{
		configState: []viewer.ConfigEntry{
			{Variant: "LegsSwitch", ActiveObject: "old", ActiveObjectInstanceID: "i-1"},
			{Variant: "Unrelated", ActiveObject: "keep"},
		},
	}
	fx := newFixture(t, fv, variantMapping())

	if err := fx.applier.ApplyVariant(context.Background(), "Legs", "Wood"); err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}

	if fv.setCalls != 1 {
		t.Fatalf("setCalls = %d, want 1 (single full write)", fv.setCalls)
	}
	if fv.configState[0].ActiveObject != "walnut" {
		t.Errorf("ActiveObject = %q, want the ref color %q", fv.configState[0].ActiveObject, "walnut")
	}
	if fv.configState[0].ActiveObjectInstanceID != "" {
		t.Error("stale ActiveObjectInstanceID must be cleared")
	}
	if fv.configState[1].ActiveObject != "keep" {
		t.Error("unrelated entries must not change")
	}
}

func TestApplyVariant_NoMatchIsNoOp(t *testing.T) {
	fv := &fakeViewer{
		configState: []viewer.ConfigEntry{{Variant: "Unrelated", ActiveObject: "keep"}},
	}
	fx := newFixture(t, fv, variantMapping())

	if err := fx.applier.ApplyVariant(context.Background(), "Legs", "Wood"); err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}
	if fv.setCalls != 0 {
		t.Errorf("setCalls = %d, want 0 (no-op when nothing matches)", fv.setCalls)
	}
}

func TestApplyVariant_ValueFallsBackToNameThenOption(t *testing.T) {
	fv := &fakeViewer{
		configState: []viewer.ConfigEntry{{Variant: "LegsSwitch"}},
	}
	fx := newFixture(t, fv, variantMapping())
	ctx := context.Background()

	// "Steel" has no color, so the ref name is used.
	if err := fx.applier.ApplyVariant(ctx, "Legs", "Steel"); err != nil {
		t.Fatalf("ApplyVariant: %v", err)
	}
	if fv.configState[0].ActiveObject != "LegsSteel" {
		t.Errorf("ActiveObject = %q, want ref name LegsSteel", fv.configState[0].ActiveObject)
	}
}

func TestApply_Dispatch(t *testing.T) {
	mapping := variantMapping()
	fv := &fakeViewer{
		configState: []viewer.ConfigEntry{{Variant: "LegsSwitch"}},
	}
	fx := newFixture(t, fv, mapping)

	// "Legs" is a variant application: the viewer's configuration state
	// changes and nothing is imported.
	if err := fx.applier.Apply(context.Background(), "Legs", "Wood"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if fv.setCalls != 1 || fv.imports != 0 {
		t.Errorf("setCalls = %d imports = %d, want variant path (1, 0)", fv.setCalls, fv.imports)
	}
}
