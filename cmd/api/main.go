package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Contratos-api/internal/application/catalog"
	"github.com/jhoicas/Contratos-api/internal/application/invoicing"
	"github.com/jhoicas/Contratos-api/internal/application/ledger"
	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/directory"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/excel"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Contratos-api/internal/interfaces/http"
	"github.com/jhoicas/Contratos-api/pkg/config"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de base de datos")
	}

	providerRepo := postgres.NewProviderRepository(pool)
	officeRepo := postgres.NewOfficeRepository(pool)
	contractRepo := postgres.NewContractRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	assignmentRepo := postgres.NewInvoiceOfficeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Sin DIRECTORY_BASE_URL no hay centros de costo ni consecutivo del ERP.
	var (
		providerDir invoicing.ProviderDirectory
		ledgerDir   ledger.Directory
	)
	if cfg.Directory.BaseURL != "" {
		client := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout)
		providerDir, ledgerDir = client, client
	} else {
		log.Warn().Msg("DIRECTORY_BASE_URL vacío: exportación sin centros de costo")
	}

	queries := invoicing.NewInvoiceQueries(invoiceRepo, assignmentRepo, providerRepo, officeRepo)
	engine := invoicing.NewAssignmentEngine(txRunner, queries, providerDir, log)
	pending := invoicing.NewPendingDetector(contractRepo, assignmentRepo, providerRepo, officeRepo)
	catalogUC := catalog.NewUseCase(providerRepo, officeRepo, contractRepo)

	if _, err := os.Stat(cfg.Export.TemplatePath); err != nil {
		log.Warn().Str("path", cfg.Export.TemplatePath).Msg("plantilla de archivo plano no disponible; /api/ledger/export fallará")
	}
	ledgerUC := ledger.NewUseCase(
		ledger.Repos{
			Invoices:    invoiceRepo,
			Assignments: assignmentRepo,
			Offices:     officeRepo,
			Contracts:   contractRepo,
			Providers:   providerRepo,
		},
		ledgerDir,
		excel.NewSheetWriter(cfg.Export.TemplatePath, cfg.Export.SheetName),
		ledger.Options{
			// el importador espera la clase con espacio final
			Layout: accounting.LayoutConfig{
				Company:       cfg.Export.Company,
				DocumentClass: cfg.Export.DocumentClass + " ",
				DocumentType:  cfg.Export.DocumentType,
			},
			DefaultNumedoc: cfg.Export.DefaultNumedoc,
			MaxConcurrency: cfg.Directory.MaxConcurrency,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.WithComponent("http")))

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.Swagger.FilePath); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Swagger.FilePath,
			Path:     "docs",
			Title:    "Contratos API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: la API corre sin autenticación")
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:   catalogUC,
		Pending:   pending,
		Engine:    engine,
		Invoices:  queries,
		Ledger:    ledgerUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
