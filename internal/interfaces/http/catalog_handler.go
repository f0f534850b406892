package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
)

// catalogService lo implementa *catalog.UseCase.
type catalogService interface {
	CreateProvider(ctx context.Context, in dto.CreateProviderRequest) (*dto.ProviderResponse, error)
	GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error)
	ListProviders(ctx context.Context, in dto.CatalogListRequest) (*dto.ProviderListResponse, error)
	DeleteProvider(ctx context.Context, id string) error
	OfficesForProvider(ctx context.Context, providerID string) ([]dto.OfficeResponse, error)
	CreateOffice(ctx context.Context, in dto.CreateOfficeRequest) (*dto.OfficeResponse, error)
	GetOffice(ctx context.Context, id string) (*dto.OfficeResponse, error)
	ListOffices(ctx context.Context, in dto.CatalogListRequest) (*dto.OfficeListResponse, error)
	CreateContract(ctx context.Context, in dto.CreateContractRequest) (*dto.ContractResponse, error)
	GetContract(ctx context.Context, id string) (*dto.ContractResponse, error)
	ListContracts(ctx context.Context, in dto.ContractListRequest) (*dto.ContractListResponse, error)
	MatchContract(ctx context.Context, providerID, officeID string) (*dto.ContractMatchResponse, error)
}

// pendingFinder lo implementa *invoicing.PendingDetector.
type pendingFinder interface {
	FindMissingInvoices(ctx context.Context, year, month int) (*dto.PendingInvoicesResponse, error)
}

// CatalogHandler proveedores, oficinas y contratos.
type CatalogHandler struct {
	uc      catalogService
	pending pendingFinder
	now     func() time.Time
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc catalogService, pending pendingFinder) *CatalogHandler {
	return &CatalogHandler{uc: uc, pending: pending, now: time.Now}
}

// ── Proveedores ───────────────────────────────────────────────────────────────

// CreateProvider godoc
// @Summary      Crear proveedor
// @Tags         providers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProviderRequest  true  "NIT y nombre"
// @Success      201   {object}  dto.ProviderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/providers [post]
func (h *CatalogHandler) CreateProvider(c *fiber.Ctx) error {
	var in dto.CreateProviderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateProvider(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProviders GET /api/providers?search=
func (h *CatalogHandler) ListProviders(c *fiber.Ctx) error {
	var in dto.CatalogListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListProviders(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetProvider GET /api/providers/:id
func (h *CatalogHandler) GetProvider(c *fiber.Ctx) error {
	out, err := h.uc.GetProvider(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteProvider godoc
// @Summary      Eliminar proveedor
// @Description  Rechazado (409) si tiene contratos o facturas.
// @Tags         providers
// @Param        id   path  string  true  "ID del proveedor"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/providers/{id} [delete]
func (h *CatalogHandler) DeleteProvider(c *fiber.Ctx) error {
	if err := h.uc.DeleteProvider(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// OfficesForProvider GET /api/providers/:id/offices (oficinas con contrato, ACTIVO primero).
func (h *CatalogHandler) OfficesForProvider(c *fiber.Ctx) error {
	out, err := h.uc.OfficesForProvider(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": out, "total": len(out)})
}

// ── Oficinas ──────────────────────────────────────────────────────────────────

func (h *CatalogHandler) CreateOffice(c *fiber.Ctx) error {
	var in dto.CreateOfficeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateOffice(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListOffices(c *fiber.Ctx) error {
	var in dto.CatalogListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListOffices(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetOffice(c *fiber.Ctx) error {
	out, err := h.uc.GetOffice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ── Contratos ─────────────────────────────────────────────────────────────────

// CreateContract godoc
// @Summary      Crear contrato
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateContractRequest  true  "Contrato"
// @Success      201   {object}  dto.ContractResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/contracts [post]
func (h *CatalogHandler) CreateContract(c *fiber.Ctx) error {
	var in dto.CreateContractRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateContract(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *CatalogHandler) ListContracts(c *fiber.Ctx) error {
	var in dto.ContractListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ListContracts(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *CatalogHandler) GetContract(c *fiber.Ctx) error {
	out, err := h.uc.GetContract(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MatchContract godoc
// @Summary      Contrato preferido para proveedor y oficina
// @Description  ACTIVO antes que CANCELADO; entre iguales el más antiguo. contract es null si no hay.
// @Tags         contracts
// @Produce      json
// @Param        provider_id  query  string  true  "Proveedor"
// @Param        office_id    query  string  true  "Oficina"
// @Success      200  {object}  dto.ContractMatchResponse
// @Router       /api/contracts/match [get]
func (h *CatalogHandler) MatchContract(c *fiber.Ctx) error {
	out, err := h.uc.MatchContract(c.UserContext(), c.Query("provider_id"), c.Query("office_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PendingInvoices godoc
// @Summary      Contratos activos sin factura en el mes
// @Tags         contracts
// @Produce      json
// @Param        year   query  int  false  "Año (defecto: actual)"
// @Param        month  query  int  false  "Mes 1-12 (defecto: actual)"
// @Success      200  {object}  dto.PendingInvoicesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/contracts/pending [get]
func (h *CatalogHandler) PendingInvoices(c *fiber.Ctx) error {
	now := h.now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	out, err := h.pending.FindMissingInvoices(c.UserContext(), year, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
