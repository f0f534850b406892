package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/application/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ledgerService lo implementa *ledger.UseCase.
type ledgerService interface {
	Preview(ctx context.Context, req dto.LedgerExportRequest) (*dto.LedgerPreviewResponse, error)
	Export(ctx context.Context, req dto.LedgerExportRequest) (*ledger.ExportResult, error)
}

// LedgerHandler archivo plano contable.
type LedgerHandler struct {
	uc ledgerService
}

// NewLedgerHandler crea el handler de exportación contable.
func NewLedgerHandler(uc ledgerService) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Preview godoc
// @Summary      Vista previa del archivo plano
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LedgerExportRequest  true  "Facturas por ID o detalle directo"
// @Success      200   {object}  dto.LedgerPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ledger/preview [post]
func (h *LedgerHandler) Preview(c *fiber.Ctx) error {
	var in dto.LedgerExportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Preview(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Descargar archivo plano (xlsx)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        body  body  dto.LedgerExportRequest  true  "Facturas por ID o detalle directo"
// @Success      200
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/ledger/export [post]
func (h *LedgerHandler) Export(c *fiber.Ctx) error {
	var in dto.LedgerExportRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Export(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(out.FileName)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set("X-Ledger-Rows", strconv.Itoa(out.Rows))
	return c.Send(out.Content)
}
