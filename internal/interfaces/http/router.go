package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog   catalogService
	Pending   pendingFinder
	Engine    invoiceCommands
	Invoices  invoiceReader
	Ledger    ledgerService
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	catalog := NewCatalogHandler(deps.Catalog, deps.Pending)

	providers := api.Group("/providers")
	providers.Post("/", catalog.CreateProvider)
	providers.Get("/", catalog.ListProviders)
	providers.Get("/:id", catalog.GetProvider)
	providers.Delete("/:id", catalog.DeleteProvider)
	providers.Get("/:id/offices", catalog.OfficesForProvider)

	offices := api.Group("/offices")
	offices.Post("/", catalog.CreateOffice)
	offices.Get("/", catalog.ListOffices)
	offices.Get("/:id", catalog.GetOffice)

	// match y pending antes de /:id
	contracts := api.Group("/contracts")
	contracts.Get("/match", catalog.MatchContract)
	contracts.Get("/pending", catalog.PendingInvoices)
	contracts.Post("/", catalog.CreateContract)
	contracts.Get("/", catalog.ListContracts)
	contracts.Get("/:id", catalog.GetContract)

	invoice := NewInvoiceHandler(deps.Engine, deps.Invoices)
	invoices := api.Group("/invoices")
	invoices.Get("/summary", invoice.Summary)
	invoices.Post("/", invoice.Create)
	invoices.Get("/", invoice.List)
	invoices.Get("/:id", invoice.GetByID)
	invoices.Put("/:id", invoice.Update)
	invoices.Delete("/:id", invoice.Delete)
	invoices.Put("/:id/office", invoice.AssignOffice)
	invoices.Put("/:id/status", invoice.ChangeStatus)
	invoices.Get("/:id/assignments", invoice.ListAssignments)
	invoices.Post("/:id/assignments", invoice.AddAssignment)
	invoices.Put("/:id/assignments", invoice.ReplaceAssignments)

	assignments := api.Group("/assignments")
	assignments.Patch("/:id", invoice.UpdateAssignment)
	assignments.Delete("/:id", invoice.RemoveAssignment)

	// Exportación contable: solo admin y contabilidad cuando hay autenticación.
	ledgerGroup := api.Group("/ledger")
	if deps.JWTSecret != "" {
		ledgerGroup.Use(RequireRole(jwt.RoleAdmin, jwt.RoleAccounting))
	}
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup.Post("/preview", ledgerHandler.Preview)
	ledgerGroup.Post("/export", ledgerHandler.Export)
}
