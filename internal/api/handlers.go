package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/assets"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/config"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/control"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/fetch"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/preview"
)

// Selector schedules selections and reports pipeline state. Implemented by
// control.Controller.
type Selector interface {
	Select(application, option string)
	Snapshot() control.Snapshot
}

// ActiveLister reports the objects currently active per application.
// Implemented by apply.Applier.
type ActiveLister interface {
	ActiveObjects(application string) []string
}

// CacheStats reports asset cache occupancy. Implemented by assets.Cache.
type CacheStats interface {
	Stats() (blobs, objects int)
}

// Deps collects the collaborators a Handler serves from. Mapping and
// Selector are required; the rest degrade the related endpoints when nil.
type Deps struct {
	Mapping  *config.Mapping
	Selector Selector
	Active   ActiveLister
	Cache    CacheStats
	Catalog  *catalog.Catalog
	Client   *fetch.Client
	Previews *preview.Service

	// AssetBase resolves bare preview image references, PreviewMax bounds
	// thumbnail dimensions.
	AssetBase  string
	PreviewMax int

	Log *zap.Logger
}

// Handler serves the configurator JSON API.
type Handler struct {
	deps Deps
	log  *zap.Logger
}

// NewHandler creates a Handler from its collaborators.
func NewHandler(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{deps: deps, log: log}
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/applications", h.GetApplications)
	api.GET("/applications/:name/options", h.GetOptions)
	api.POST("/select", h.PostSelect)
	api.GET("/state", h.GetState)
	api.GET("/preview/:name", h.GetPreview)
}

type applicationInfo struct {
	Name    string   `json:"name"`
	Variant bool     `json:"variant"`
	Options []string `json:"options"`
}

// GetApplications lists the configurable applications with their options.
func (h *Handler) GetApplications(c echo.Context) error {
	apps := h.deps.Mapping.Applications()

	infos := make([]applicationInfo, 0, len(apps))
	for _, name := range apps {
		infos = append(infos, applicationInfo{
			Name:    name,
			Variant: h.deps.Mapping.IsVariant(name),
			Options: h.deps.Mapping.Options(name),
		})
	}
	return c.JSON(http.StatusOK, infos)
}

// GetOptions lists the options of a single application.
func (h *Handler) GetOptions(c echo.Context) error {
	name := c.Param("name")
	options := h.deps.Mapping.Options(name)
	if len(options) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown application: " + name,
		})
	}
	return c.JSON(http.StatusOK, options)
}

type selectRequest struct {
	Application string `json:"application"`
	Option      string `json:"option"`
}

// PostSelect schedules a selection. The apply itself runs after the debounce
// window, so the response only acknowledges acceptance.
func (h *Handler) PostSelect(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Application == "" || req.Option == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "application and option are required",
		})
	}
	if _, ok := h.deps.Mapping.Material(req.Application, req.Option); !ok {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "unknown selection: " + req.Application + "/" + req.Option,
		})
	}

	h.deps.Selector.Select(req.Application, req.Option)
	h.log.Debug("selection accepted",
		zap.String("application", req.Application),
		zap.String("option", req.Option))

	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

type stateResponse struct {
	Pending  map[string]string   `json:"pending"`
	Applied  map[string]string   `json:"applied"`
	Applies  int                 `json:"applies"`
	Failures int                 `json:"failures"`
	Active   map[string][]string `json:"active"`
	Cache    cacheInfo           `json:"cache"`
}

type cacheInfo struct {
	Blobs   int `json:"blobs"`
	Objects int `json:"objects"`
}

// GetState reports the controller snapshot, the active objects per
// application and asset cache occupancy.
func (h *Handler) GetState(c echo.Context) error {
	snap := h.deps.Selector.Snapshot()

	resp := stateResponse{
		Pending:  snap.Pending,
		Applied:  snap.Applied,
		Applies:  snap.Applies,
		Failures: snap.Failures,
		Active:   map[string][]string{},
	}
	if h.deps.Active != nil {
		for app := range snap.Applied {
			if objs := h.deps.Active.ActiveObjects(app); len(objs) > 0 {
				resp.Active[app] = objs
			}
		}
	}
	if h.deps.Cache != nil {
		resp.Cache.Blobs, resp.Cache.Objects = h.deps.Cache.Stats()
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPreview serves the catalog preview image for a product as a JPEG
// thumbnail.
func (h *Handler) GetPreview(c echo.Context) error {
	if h.deps.Catalog == nil || h.deps.Client == nil || h.deps.Previews == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "previews unavailable"})
	}

	name := c.Param("name")
	row, ok := h.deps.Catalog.Lookup(name)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown product: " + name})
	}
	ref := row["preview_image"]
	if ref == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no preview for: " + name})
	}

	url := assets.ResolveRef(h.deps.AssetBase, ref)
	data, err := h.deps.Client.Get(c.Request().Context(), url)
	if err != nil {
		h.log.Warn("preview fetch failed", zap.String("url", url), zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "preview fetch failed"})
	}

	maxSize := h.deps.PreviewMax
	if maxSize <= 0 {
		maxSize = 256
	}
	thumb, err := h.deps.Previews.Thumbnail(data, maxSize)
	if err != nil {
		h.log.Warn("preview decode failed", zap.String("url", url), zap.Error(err))
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "preview decode failed"})
	}
	return c.Blob(http.StatusOK, "image/jpeg", thumb)
}
