package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
)

// invoiceCommands lo implementa *invoicing.AssignmentEngine.
type invoiceCommands interface {
	CreateInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, invoiceID string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, invoiceID string) error
	AssignSingleOffice(ctx context.Context, invoiceID, officeID string) (*dto.InvoiceResponse, error)
	AddOfficeAssignment(ctx context.Context, invoiceID string, in dto.OfficeAssignmentInput) (*dto.AssignmentResponse, error)
	RemoveOfficeAssignment(ctx context.Context, assignmentID string) (bool, error)
	ReplaceAllOfficeAssignments(ctx context.Context, invoiceID string, inputs []dto.OfficeAssignmentInput) (*dto.InvoiceResponse, error)
	UpdateOfficeAssignment(ctx context.Context, assignmentID string, in dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, error)
	ChangeStatus(ctx context.Context, invoiceID, newStatus string) (*dto.InvoiceResponse, error)
}

// invoiceReader lo implementa *invoicing.InvoiceQueries.
type invoiceReader interface {
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error)
	ListAssignments(ctx context.Context, invoiceID string) ([]dto.AssignmentResponse, error)
	Summary(ctx context.Context) (*dto.InvoiceSummaryResponse, error)
}

// InvoiceHandler facturas y su reparto entre oficinas.
type InvoiceHandler struct {
	engine invoiceCommands
	reader invoiceReader
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(engine invoiceCommands, reader invoiceReader) *InvoiceHandler {
	return &InvoiceHandler{engine: engine, reader: reader}
}

// Create godoc
// @Summary      Registrar factura
// @Description  Las oficinas pueden indicarse por office_id u office_code; los códigos desconocidos se anotan en notes.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.CreateInvoice(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         invoices
// @Produce      json
// @Param        search                 query  string  false  "Número, CUFE o proveedor"
// @Param        status                 query  string  false  "PENDIENTE | ASIGNADA | PAGADA"
// @Param        provider_id            query  string  false  "Proveedor"
// @Param        office_id              query  string  false  "Oficina"
// @Param        from                   query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to                     query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        only_without_contract  query  bool    false  "Solo con asignaciones sin contrato"
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	var in dto.InvoiceListRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.reader.ListInvoices(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary GET /api/invoices/summary
func (h *InvoiceHandler) Summary(c *fiber.Ctx) error {
	out, err := h.reader.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.reader.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update PUT /api/invoices/:id
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.UpdateInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/invoices/:id (las asignaciones se borran en cascada).
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.DeleteInvoice(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignOffice PUT /api/invoices/:id/office (oficina única, flujo anterior al reparto).
func (h *InvoiceHandler) AssignOffice(c *fiber.Ctx) error {
	var in dto.AssignOfficeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.AssignSingleOffice(c.UserContext(), c.Params("id"), in.OfficeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado de la factura
// @Description  PENDIENTE exige cero oficinas; ASIGNADA y PAGADA al menos una.
// @Tags         invoices
// @Produce      json
// @Param        id     path   string  true  "ID de la factura"
// @Param        value  query  string  true  "PENDIENTE | ASIGNADA | PAGADA"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) ChangeStatus(c *fiber.Ctx) error {
	value := c.Query("value")
	if value == "" && len(c.Body()) > 0 {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badBody(c)
		}
		value = body.Status
	}
	out, err := h.engine.ChangeStatus(c.UserContext(), c.Params("id"), value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ── Asignaciones ──────────────────────────────────────────────────────────────

// ListAssignments GET /api/invoices/:id/assignments
func (h *InvoiceHandler) ListAssignments(c *fiber.Ctx) error {
	out, err := h.reader.ListAssignments(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": out, "total": len(out)})
}

// AddAssignment POST /api/invoices/:id/assignments
func (h *InvoiceHandler) AddAssignment(c *fiber.Ctx) error {
	var in dto.OfficeAssignmentInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.AddOfficeAssignment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReplaceAssignments PUT /api/invoices/:id/assignments (lista vacía deja la factura PENDIENTE).
func (h *InvoiceHandler) ReplaceAssignments(c *fiber.Ctx) error {
	var in dto.ReplaceAssignmentsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.ReplaceAllOfficeAssignments(c.UserContext(), c.Params("id"), in.Offices)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateAssignment PATCH /api/assignments/:id
func (h *InvoiceHandler) UpdateAssignment(c *fiber.Ctx) error {
	var in dto.UpdateAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.engine.UpdateOfficeAssignment(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveAssignment DELETE /api/assignments/:id
func (h *InvoiceHandler) RemoveAssignment(c *fiber.Ctx) error {
	removed, err := h.engine.RemoveOfficeAssignment(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "asignación no encontrada"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
