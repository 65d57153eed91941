package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/vimal-patel-bvi/freedom-vectary/internal/api"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/apply"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/assets"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/catalog"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/config"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/control"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/fetch"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/preview"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/scene"
	"github.com/vimal-patel-bvi/freedom-vectary/internal/viewer"
)

func main() {
	// Command line flags
	var (
		configFlag   = flag.String("config", "", "Path to config file")
		viewerFlag   = flag.String("viewer", "", "Viewer websocket URL (overrides config)")
		catalogFlag  = flag.String("catalog", "", "Catalog URL (overrides config)")
		apiFlag      = flag.String("api", "", "HTTP API listen address (overrides config)")
		selectFlag   = flag.String("select", "", "Selections to apply, comma-separated App=Option pairs")
		prefetchFlag = flag.Bool("prefetch", false, "Warm the asset cache before applying")
		dryRunFlag   = flag.Bool("dry-run", false, "Load catalog and scene, list applications, apply nothing")
		verboseFlag  = flag.Bool("verbose", false, "Enable debug logging")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *viewerFlag != "" {
		settings.ViewerURL = *viewerFlag
	}
	if *catalogFlag != "" {
		settings.CatalogURL = *catalogFlag
	}
	if *apiFlag != "" {
		settings.APIAddr = *apiFlag
	}
	if *prefetchFlag {
		settings.PrefetchAssets = true
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	log, err := newLogger(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	selections, err := parseSelections(*selectFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if settings.CatalogURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no catalog URL configured (use -catalog or a config file)")
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := fetch.NewClient()

	text, err := client.GetString(ctx, settings.CatalogURL)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}
	cat := catalog.New(catalog.Parse(text))
	log.Info("catalog loaded", zap.Int("rows", cat.Len()))

	remote, err := viewer.Dial(ctx, settings.ViewerURL)
	if err != nil {
		log.Fatal("connect viewer", zap.Error(err))
	}
	defer remote.Close()

	if err := remote.Init(ctx); err != nil {
		log.Fatal("init viewer", zap.Error(err))
	}
	roots, err := remote.Objects(ctx)
	if err != nil {
		log.Fatal("load scene", zap.Error(err))
	}
	index := scene.NewIndex(roots)
	log.Info("scene indexed", zap.Int("names", index.Names()))

	cache := assets.NewCache(settings.AssetBasePath, client, remote, log)
	applier := apply.New(cat, &settings.Mapping, cache, remote, index, log)

	if settings.PrefetchAssets {
		if err := cache.Prefetch(ctx, cat, 4); err != nil {
			log.Warn("asset prefetch incomplete", zap.Error(err))
		}
	}

	if *dryRunFlag {
		fmt.Println("Applications:")
		for _, app := range settings.Mapping.Applications() {
			kind := "material"
			if settings.Mapping.IsVariant(app) {
				kind = "variant"
			}
			fmt.Printf("  %s (%s): %s\n", app, kind, strings.Join(settings.Mapping.Options(app), ", "))
		}
		return
	}

	controller := control.New(applier, settings.Debounce(), log)
	defer controller.Close()

	done := make(chan control.Result, len(selections))
	controller.OnResult(func(res control.Result) {
		select {
		case done <- res:
		default:
		}
	})

	if settings.APIAddr != "" {
		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Recover())

		h := api.NewHandler(api.Deps{
			Mapping:    &settings.Mapping,
			Selector:   controller,
			Active:     applier,
			Cache:      cache,
			Catalog:    cat,
			Client:     client,
			Previews:   preview.NewService(),
			AssetBase:  settings.AssetBasePath,
			PreviewMax: settings.PreviewMaxSize,
			Log:        log,
		})
		h.RegisterRoutes(e)

		go func() {
			log.Info("api listening", zap.String("addr", settings.APIAddr))
			if err := e.Start(settings.APIAddr); err != nil {
				log.Error("api server stopped", zap.Error(err))
			}
		}()
		defer e.Close()
	}

	for _, sel := range selections {
		controller.Select(sel[0], sel[1])
	}

	if len(selections) > 0 {
		failures := 0
		for i := 0; i < len(selections); i++ {
			select {
			case res := <-done:
				if res.Err != nil {
					log.Error("selection failed",
						zap.String("application", res.Application),
						zap.String("option", res.Option),
						zap.Error(res.Err))
					failures++
				}
			case <-ctx.Done():
				log.Warn("interrupted")
				os.Exit(130)
			}
		}
		if failures > 0 {
			os.Exit(1)
		}
		if settings.APIAddr == "" {
			return
		}
	}

	if settings.APIAddr == "" && len(selections) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to do: pass -select pairs or enable the API with -api")
		fmt.Fprintln(os.Stderr, "For interactive mode, use: configurator-tui")
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("shutting down")
}

// newLogger builds a console logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// parseSelections splits "App=Option,App2=Option2" into pairs. Repeated
// applications keep the last option, matching the debounce behavior, so
// each pair yields exactly one apply result.
func parseSelections(raw string) ([][2]string, error) {
	if raw == "" {
		return nil, nil
	}

	var pairs [][2]string
	seen := make(map[string]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		app, option, ok := strings.Cut(part, "=")
		if !ok || app == "" || option == "" {
			return nil, fmt.Errorf("invalid selection %q, want App=Option", part)
		}
		app, option = strings.TrimSpace(app), strings.TrimSpace(option)
		if i, dup := seen[app]; dup {
			pairs[i][1] = option
			continue
		}
		seen[app] = len(pairs)
		pairs = append(pairs, [2]string{app, option})
	}
	return pairs, nil
}
