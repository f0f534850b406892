package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/internal/domain/repository"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

// Options parámetros del documento contable.
type Options struct {
	Layout         accounting.LayoutConfig
	DefaultNumedoc int // si el directorio no responde
	MaxConcurrency int // consultas simultáneas de centro de costo
}

// Repos lecturas necesarias para exportar facturas guardadas.
type Repos struct {
	Invoices    repository.InvoiceRepository
	Assignments repository.InvoiceOfficeRepository
	Offices     repository.OfficeRepository
	Contracts   repository.ContractRepository
	Providers   repository.ProviderRepository
}

// ExportResult archivo generado.
type ExportResult struct {
	FileName string
	Content  []byte
	Rows     int
}

// UseCase genera el archivo plano contable a partir de facturas.
type UseCase struct {
	repos     Repos
	directory Directory
	writer    SheetWriter
	opts      Options
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. directory puede ser nil (sin centros de costo).
func NewUseCase(repos Repos, directory Directory, writer SheetWriter, opts Options, log *logger.Logger) *UseCase {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	return &UseCase{
		repos:     repos,
		directory: directory,
		writer:    writer,
		opts:      opts,
		log:       log.WithComponent("export"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

type prepared struct {
	input    accounting.BatchInput
	batch    *accounting.Batch
	fileName string
}

// Preview genera las filas sin escribir el archivo.
func (uc *UseCase) Preview(ctx context.Context, req dto.LedgerExportRequest) (*dto.LedgerPreviewResponse, error) {
	p, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	cells := accounting.LayoutAll(uc.opts.Layout, p.batch.Rows)
	rows := make([]map[string]any, 0, len(cells))
	for _, line := range cells {
		m := make(map[string]any, len(accounting.Headers))
		for i, c := range line {
			m[accounting.Headers[i]] = c.Display()
		}
		rows = append(rows, m)
	}
	return &dto.LedgerPreviewResponse{
		FileName:  p.fileName,
		TotalRows: len(rows),
		Headers:   accounting.Headers,
		Rows:      rows,
		Documents: toDocuments(p.batch.Documents),
	}, nil
}

// Export genera el archivo plano listo para el importador.
func (uc *UseCase) Export(ctx context.Context, req dto.LedgerExportRequest) (*ExportResult, error) {
	p, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	content, err := uc.writer.Write(ctx, accounting.Headers, accounting.LayoutAll(uc.opts.Layout, p.batch.Rows))
	if err != nil {
		return nil, fmt.Errorf("escribir archivo plano: %w", err)
	}
	docs := p.batch.Documents
	uc.log.Info().
		Str("nit", p.input.ProviderTaxID).
		Int("invoices", len(p.input.Invoices)).
		Int("rows", len(p.batch.Rows)).
		Int("first_doc", docs[0].Document).
		Int("last_doc", docs[len(docs)-1].Document).
		Str("file", p.fileName).
		Msg("archivo plano generado")
	return &ExportResult{FileName: p.fileName, Content: content, Rows: len(p.batch.Rows)}, nil
}

func (uc *UseCase) prepare(ctx context.Context, req dto.LedgerExportRequest) (*prepared, error) {
	if req.WithholdingPct != nil && (req.WithholdingPct.IsNegative() || req.WithholdingPct.GreaterThan(decimal.NewFromInt(100))) {
		return nil, fmt.Errorf("%w: withholding_pct fuera de 0..100", domain.ErrInvalidInput)
	}
	causation := uc.now()
	if d, err := dto.ParseDate(req.CausationDate); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	} else if d != nil {
		causation = *d
	}

	var (
		in  accounting.BatchInput
		err error
	)
	if len(req.InvoiceIDs) > 0 {
		in, err = uc.fromStored(ctx, req)
	} else {
		in, err = uc.fromRequest(req, causation)
	}
	if err != nil {
		return nil, err
	}
	in.CausationDate = causation
	in.FirstDocument = uc.firstDocument(ctx, req.Numedoc)

	centers := uc.costCenters(ctx, in.Invoices)
	batch, err := accounting.Generate(in, func(code string) string {
		return centers[accounting.SubCode(code)]
	})
	if err != nil {
		return nil, err
	}
	return &prepared{input: in, batch: batch, fileName: accounting.FileName(in.ProviderTaxID, causation)}, nil
}

// firstDocument NUMEDOC inicial: el pedido, el siguiente del directorio o el valor configurado.
func (uc *UseCase) firstDocument(ctx context.Context, requested int) int {
	if requested > 0 {
		return requested
	}
	if uc.directory != nil {
		class := strings.TrimSpace(uc.opts.Layout.DocumentClass)
		n, err := uc.directory.NextDocumentNumber(ctx, uc.opts.Layout.DocumentType, class)
		if err == nil && n > 0 {
			return n
		}
		uc.log.Warn().Err(err).Int("fallback", uc.opts.DefaultNumedoc).Msg("consecutivo no disponible")
	}
	return uc.opts.DefaultNumedoc
}

// costCenters consulta cada subcódigo una sola vez, con concurrencia acotada.
// Un fallo deja el centro de costo vacío y no detiene la exportación.
func (uc *UseCase) costCenters(ctx context.Context, invoices []accounting.InvoiceInput) map[string]string {
	out := make(map[string]string)
	if uc.directory == nil {
		return out
	}
	var subCodes []string
	seen := make(map[string]struct{})
	for _, inv := range invoices {
		for _, o := range inv.Offices {
			sc := accounting.SubCode(o.Code)
			if sc == "" {
				continue
			}
			if _, ok := seen[sc]; ok {
				continue
			}
			seen[sc] = struct{}{}
			subCodes = append(subCodes, sc)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.MaxConcurrency)
	for _, sc := range subCodes {
		sc := sc
		g.Go(func() error {
			cc, err := uc.directory.CostCenter(gctx, sc)
			if err != nil {
				uc.log.Warn().Err(err).Str("subcode", sc).Msg("centro de costo no disponible")
				cc = ""
			}
			mu.Lock()
			out[sc] = strings.TrimSpace(cc)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// fromRequest modo directo: las facturas llegan completas en el request.
func (uc *UseCase) fromRequest(req dto.LedgerExportRequest, causation time.Time) (accounting.BatchInput, error) {
	in := accounting.BatchInput{
		ProviderTaxID: strings.TrimSpace(req.ProviderTaxID),
		ProviderName:  strings.TrimSpace(req.ProviderName),
	}
	if len(req.Invoices) == 0 {
		return in, fmt.Errorf("%w: invoice_ids o invoices requerido", domain.ErrInvalidInput)
	}
	hasVAT := req.HasVAT != nil && *req.HasVAT
	pct := decimal.Zero
	if req.WithholdingPct != nil {
		pct = *req.WithholdingPct
	}
	for _, li := range req.Invoices {
		billing := causation
		d, err := dto.ParseDate(li.InvoiceDate)
		if err != nil {
			return in, fmt.Errorf("%w: factura %s: %v", domain.ErrInvalidInput, li.Number, err)
		}
		if d != nil {
			billing = *d
		}
		inv := accounting.InvoiceInput{
			Number:         strings.TrimSpace(li.Number),
			BillingDate:    billing,
			HasVAT:         hasVAT,
			WithholdingPct: pct,
			Description:    strings.TrimSpace(req.Description),
		}
		for _, o := range li.Offices {
			inv.Offices = append(inv.Offices, accounting.OfficeAmount{
				Code:  strings.TrimSpace(o.OfficeCode),
				Name:  strings.TrimSpace(o.OfficeName),
				Value: o.Value,
			})
		}
		in.Invoices = append(in.Invoices, inv)
	}
	return in, nil
}

// fromStored arma el lote desde facturas guardadas, en el orden pedido. Todas deben ser del mismo proveedor
// y ninguna puede repetirse: cada una recibe un solo NUMEDOC.
// IVA y retención salen del primer contrato encontrado en las asignaciones, salvo que el request los fije.
func (uc *UseCase) fromStored(ctx context.Context, req dto.LedgerExportRequest) (accounting.BatchInput, error) {
	var in accounting.BatchInput
	invoices, err := uc.repos.Invoices.GetByIDs(ctx, req.InvoiceIDs)
	if err != nil {
		return in, err
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}
	ordered := make([]*entity.Invoice, 0, len(req.InvoiceIDs))
	seen := make(map[string]struct{}, len(req.InvoiceIDs))
	for _, id := range req.InvoiceIDs {
		if _, dup := seen[id]; dup {
			return in, fmt.Errorf("%w: factura %s repetida en el lote", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		inv, ok := byID[id]
		if !ok {
			return in, fmt.Errorf("factura %s: %w", id, domain.ErrNotFound)
		}
		if len(ordered) > 0 && inv.ProviderID != ordered[0].ProviderID {
			return in, fmt.Errorf("%w: las facturas deben ser del mismo proveedor", domain.ErrInvalidInput)
		}
		ordered = append(ordered, inv)
	}

	provider, err := uc.repos.Providers.GetByID(ctx, ordered[0].ProviderID)
	if err != nil {
		return in, err
	}
	if provider == nil {
		return in, fmt.Errorf("proveedor %s: %w", ordered[0].ProviderID, domain.ErrNotFound)
	}
	in.ProviderTaxID = provider.TaxID
	in.ProviderName = provider.Name
	if name := strings.TrimSpace(req.ProviderName); name != "" {
		in.ProviderName = name
	}

	assignments, err := uc.repos.Assignments.ListByInvoices(ctx, req.InvoiceIDs)
	if err != nil {
		return in, err
	}
	byInvoice := make(map[string][]*entity.InvoiceOffice, len(ordered))
	officeIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		byInvoice[a.InvoiceID] = append(byInvoice[a.InvoiceID], a)
		officeIDs = append(officeIDs, a.OfficeID)
	}
	for _, inv := range ordered {
		if inv.LegacyOfficeID != "" {
			officeIDs = append(officeIDs, inv.LegacyOfficeID)
		}
	}
	offices := make(map[string]*entity.Office, len(officeIDs))
	if len(officeIDs) > 0 {
		list, err := uc.repos.Offices.ListByIDs(ctx, officeIDs)
		if err != nil {
			return in, err
		}
		for _, o := range list {
			offices[o.ID] = o
		}
	}

	contractCache := make(map[string]*entity.Contract)
	for _, inv := range ordered {
		item := accounting.InvoiceInput{
			Number:      inv.Number,
			BillingDate: inv.EffectiveDate(),
			Description: strings.TrimSpace(req.Description),
		}
		var contractIDs []string
		for _, a := range byInvoice[inv.ID] {
			item.Offices = append(item.Offices, officeAmount(offices[a.OfficeID], a.Value))
			if a.ContractID != "" {
				contractIDs = append(contractIDs, a.ContractID)
			}
		}
		if len(item.Offices) == 0 && inv.LegacyOfficeID != "" {
			item.Offices = append(item.Offices, officeAmount(offices[inv.LegacyOfficeID], inv.Value))
			if inv.LegacyContractID != "" {
				contractIDs = append(contractIDs, inv.LegacyContractID)
			}
		}
		if len(item.Offices) == 0 {
			return in, fmt.Errorf("%w: factura %s sin oficinas asignadas", domain.ErrInvalidInput, inv.Number)
		}
		c, err := uc.firstContract(ctx, contractCache, contractIDs)
		if err != nil {
			return in, err
		}
		if c != nil {
			item.HasVAT = c.HasVAT
			item.WithholdingPct = c.EffectiveWithholdingPct()
		}
		if req.HasVAT != nil {
			item.HasVAT = *req.HasVAT
		}
		if req.WithholdingPct != nil {
			item.WithholdingPct = *req.WithholdingPct
		}
		in.Invoices = append(in.Invoices, item)
	}
	return in, nil
}

func officeAmount(o *entity.Office, value decimal.Decimal) accounting.OfficeAmount {
	if o == nil {
		return accounting.OfficeAmount{Value: value}
	}
	return accounting.OfficeAmount{Code: o.Code, Name: o.Name, Value: value}
}

func (uc *UseCase) firstContract(ctx context.Context, cache map[string]*entity.Contract, ids []string) (*entity.Contract, error) {
	for _, id := range ids {
		c, ok := cache[id]
		if !ok {
			var err error
			if c, err = uc.repos.Contracts.GetByID(ctx, id); err != nil {
				return nil, err
			}
			cache[id] = c
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, nil
}

func toDocuments(docs []accounting.DocumentSummary) []dto.LedgerDocumentResponse {
	out := make([]dto.LedgerDocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.LedgerDocumentResponse{
			Document:      d.Document,
			InvoiceNumber: d.InvoiceNumber,
			Base:          d.Base,
			VAT:           d.VAT,
			Withholding:   d.Withholding,
			Debits:        d.Debits,
			Credits:       d.Credits,
			Balance:       d.Balance,
			Rows:          d.Rows,
		})
	}
	return out
}
