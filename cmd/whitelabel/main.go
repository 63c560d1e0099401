package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pitabwire/util"

	"github.com/pitabwire/whitelabel"
	"github.com/pitabwire/whitelabel/api"
	"github.com/pitabwire/whitelabel/brand"
	"github.com/pitabwire/whitelabel/cache"
	"github.com/pitabwire/whitelabel/localization"
	"github.com/pitabwire/whitelabel/render"
	"github.com/pitabwire/whitelabel/revalidation"
	"github.com/pitabwire/whitelabel/store"
)

const serviceName = "whitelabel"

func main() {
	cfg, err := whitelabel.ConfigFromEnv[whitelabel.ConfigurationDefault]()
	if err != nil {
		util.Log(context.Background()).WithError(err).Fatal("could not process configuration")
	}

	ctx, svc := whitelabel.NewService(
		whitelabel.WithName(serviceName),
		whitelabel.WithConfig(&cfg),
	)
	log := svc.Log(ctx)

	registry, err := loadBrandRegistry(&cfg)
	if err != nil {
		log.WithError(err).Fatal("could not load brand table")
	}

	activeBrand := registry.Resolve(cfg.BrandID())
	log.WithField("brand", activeBrand.ID).Info("brand resolved")

	translator := localization.NewManager(activeBrand, cfg.TranslationsFolder(), cfg.Languages()...)

	rawCache, err := buildCache(&cfg)
	if err != nil {
		log.WithError(err).Fatal("could not connect cache backend")
	}
	pages := render.NewPageCache(rawCache)

	renderer, err := render.NewRenderer(activeBrand, translator, pages)
	if err != nil {
		log.WithError(err).Fatal("could not build renderer")
	}

	notifier, err := revalidation.NewNotifier(pages, cfg.InvalidationWorkers)
	if err != nil {
		log.WithError(err).Fatal("could not build mutation notifier")
	}

	handler := api.NewHandler(
		store.NewProductStore(cfg.GetStoreLatency()),
		store.NewUserStore(cfg.GetStoreLatency()),
		notifier,
		renderer,
		cfg.GetRevalidateInterval(),
	)

	routes := whitelabel.NewRouteRegistry()
	handler.SetupRoutes(routes)

	svc.Init(ctx, whitelabel.WithHTTPHandler(routes))
	svc.AddCleanupMethod(func(cleanupCtx context.Context) {
		notifier.Close()
		if closeErr := pages.Close(); closeErr != nil {
			util.Log(cleanupCtx).WithError(closeErr).Warn("page cache did not close cleanly")
		}
	})

	if err = svc.Run(ctx, cfg.HTTPPort()); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("service stopped in error")
	}
}

func loadBrandRegistry(cfg whitelabel.ConfigurationBranding) (*brand.Registry, error) {
	path := cfg.BrandsTablePath()
	if path == "" {
		return brand.DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return brand.LoadRegistry(data)
}

func buildCache(cfg whitelabel.ConfigurationCache) (cache.RawCache, error) {
	uri := cfg.CacheURI()
	if strings.HasPrefix(uri, "redis://") {
		return cache.NewRedisCache(cache.RedisOptions{Addr: uri})
	}
	return cache.NewInMemoryCache(), nil
}
