// Package api exposes the configurator over HTTP.
//
// The surface is a small JSON API built on echo. It lists the configurable
// applications and their options, accepts selections, reports the runtime
// state of the apply pipeline and serves catalog preview thumbnails.
//
// Example usage:
//
//	e := echo.New()
//	h := api.NewHandler(api.Deps{
//		Mapping:  settings.Mapping,
//		Selector: controller,
//		Active:   applier,
//	})
//	h.RegisterRoutes(e)
//	e.Start(":8080")
package api
