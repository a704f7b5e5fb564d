package main

import (
	"context"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/quillcms/quill/internal/config"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/fields"
	"github.com/quillcms/quill/internal/infrastructure/providers"
	"github.com/quillcms/quill/internal/infrastructure/repository"
	"github.com/quillcms/quill/internal/present/rest"
	restmiddleware "github.com/quillcms/quill/internal/present/rest/middleware"
	"github.com/quillcms/quill/internal/service"
	"github.com/quillcms/quill/internal/usecase"
)

func main() {
	configPath := os.Getenv("QUILL_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to setup tracer: " + err.Error())
		}
		defer cleanup()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		panic("failed to connect database")
	}

	err = providers.MigrateDatabase(db)
	if err != nil {
		panic("failed to migrate database")
	}

	mc := providers.NewMemcache(conf.Server.MemcachedAddr)
	rdb := providers.NewRedis(conf.Server)

	localization := domain.Localization{
		Locales:        conf.Localization.Locales,
		DefaultLocale:  conf.Localization.DefaultLocale,
		FallbackLocale: conf.Localization.FallbackLocale,
	}
	domainConf := domain.Config{
		FQDN:         conf.Site.FQDN,
		Localization: localization,
	}

	registry := service.NewCollectionRegistry()
	for _, col := range defaultCollections() {
		registry.Register(col)
	}

	documentRepo := repository.NewDocumentRepository(db, mc)
	versionRepo := repository.NewVersionRepository(db, mc)
	txManager := repository.NewTransactionManager(db)

	pipeline := fields.NewPipeline(localization)
	access := service.NewAccessService(defaultPolicies())
	hooks := service.NewHookRunner()
	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.APIKeys)

	duplicateUC := usecase.NewDuplicateUsecase(access, documentRepo, versionRepo, pipeline, hooks, txManager, localization)
	documentUC := usecase.NewDocumentUsecase(access, documentRepo, pipeline, hooks, localization)

	handler := rest.NewHandler(domainConf, registry, duplicateUC, documentUC, signal)
	authMiddleware := restmiddleware.NewAuthMiddleware(auth)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(conf.Site.FQDN))
	}
	e.Use(authMiddleware.IdentifyPrincipal)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTracer(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return func() {
		_ = provider.Shutdown(context.Background())
	}, nil
}
