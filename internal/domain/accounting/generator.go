package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Contratos-api/internal/domain"
)

// Cuentas contables fijas del archivo plano.
const (
	AccountBase70      = "61350513"
	AccountBase30      = "61700360"
	AccountVAT         = "24081003"
	AccountWithholding = "23652501"
	AccountBalance     = "23355002"
)

// NoDestination valor centinela de DESTINO cuando la fila no corresponde a una oficina.
const NoDestination = "."

var (
	vatFactor = decimal.RequireFromString("1.19")
	share70   = decimal.RequireFromString("0.70")
	share30   = decimal.RequireFromString("0.30")
	hundred   = decimal.NewFromInt(100)
)

// Round redondea a la unidad (sin centavos), mitad lejos de cero. Se usa en todos los puntos de redondeo.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// OfficeAmount valor asignado a una oficina dentro de una factura.
type OfficeAmount struct {
	Code  string
	Name  string
	Value decimal.Decimal
}

// InvoiceInput datos de una factura a causar.
type InvoiceInput struct {
	Number         string
	BillingDate    time.Time // define el mes del DETALLE
	HasVAT         bool
	WithholdingPct decimal.Decimal
	Description    string // reemplaza el DETALLE de todas las filas si no está vacío
	Offices        []OfficeAmount
}

// BatchInput lote de facturas de un mismo proveedor.
type BatchInput struct {
	ProviderTaxID string
	ProviderName  string
	CausationDate time.Time
	FirstDocument int
	Invoices      []InvoiceInput
}

// Row fila contable antes de serializar.
type Row struct {
	Document    int
	Date        time.Time
	Account     string
	ThirdParty  string
	CostCenter  string
	Destination string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Detail      string
}

// DocumentSummary totales de un documento (una factura) del lote.
type DocumentSummary struct {
	Document      int
	InvoiceNumber string
	Base          decimal.Decimal
	VAT           decimal.Decimal
	Withholding   decimal.Decimal
	Debits        decimal.Decimal
	Credits       decimal.Decimal // incluye el saldo
	Balance       decimal.Decimal
	Rows          int
}

// Batch resultado de generar un lote.
type Batch struct {
	Rows      []Row
	Documents []DocumentSummary
}

// CostCenterFunc resuelve el centro de costo de un código de oficina. Vacío si no se conoce.
type CostCenterFunc func(officeCode string) string

// Generate genera las filas de todas las facturas en orden, con NUMEDOC consecutivo desde FirstDocument.
func Generate(in BatchInput, costCenter CostCenterFunc) (*Batch, error) {
	if len(in.Invoices) == 0 {
		return nil, fmt.Errorf("%w: el lote no tiene facturas", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ProviderTaxID) == "" {
		return nil, fmt.Errorf("%w: nit del proveedor requerido", domain.ErrInvalidInput)
	}
	if costCenter == nil {
		costCenter = func(string) string { return "" }
	}
	out := &Batch{}
	for i, inv := range in.Invoices {
		doc := in.FirstDocument + i
		rows, sum, err := generateInvoice(in, inv, doc, costCenter)
		if err != nil {
			return nil, err
		}
		out.Rows = append(out.Rows, rows...)
		out.Documents = append(out.Documents, sum)
	}
	return out, nil
}

type officeTotal struct {
	code  string
	name  string
	value decimal.Decimal
}

// groupOffices suma los valores por código de oficina conservando el orden de aparición.
func groupOffices(offices []OfficeAmount) ([]officeTotal, error) {
	idx := make(map[string]int, len(offices))
	var out []officeTotal
	for _, o := range offices {
		if o.Value.IsNegative() {
			return nil, fmt.Errorf("%w: oficina %s", domain.ErrNegativeValue, o.Code)
		}
		code := strings.TrimSpace(o.Code)
		if i, ok := idx[code]; ok {
			out[i].value = out[i].value.Add(o.Value)
			if out[i].name == "" {
				out[i].name = o.Name
			}
			continue
		}
		idx[code] = len(out)
		out = append(out, officeTotal{code: code, name: strings.TrimSpace(o.Name), value: o.Value})
	}
	return out, nil
}

func generateInvoice(b BatchInput, inv InvoiceInput, doc int, costCenter CostCenterFunc) ([]Row, DocumentSummary, error) {
	sum := DocumentSummary{Document: doc, InvoiceNumber: inv.Number}
	if len(inv.Offices) == 0 {
		return nil, sum, fmt.Errorf("%w: factura %s sin oficinas", domain.ErrInvalidInput, inv.Number)
	}
	if inv.WithholdingPct.IsNegative() || inv.WithholdingPct.GreaterThan(hundred) {
		return nil, sum, fmt.Errorf("%w: porcentaje de retención %s", domain.ErrInvalidInput, inv.WithholdingPct)
	}
	offices, err := groupOffices(inv.Offices)
	if err != nil {
		return nil, sum, err
	}

	detail := func(name string) string {
		if d := strings.TrimSpace(inv.Description); d != "" {
			return normalizeDetail(d)
		}
		return Detail(inv.Number, name, inv.BillingDate)
	}
	row := func(account, cc, dest, text string) Row {
		return Row{
			Document:    doc,
			Date:        b.CausationDate,
			Account:     account,
			ThirdParty:  strings.TrimSpace(b.ProviderTaxID),
			CostCenter:  cc,
			Destination: dest,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			Detail:      text,
		}
	}

	var (
		rows      []Row
		totalBase = decimal.Zero
		vatAcc    = decimal.Zero
		debits    = decimal.Zero
		lastCC    string
		lastCode  string
	)
	for _, o := range offices {
		base := o.value
		if inv.HasVAT {
			base = Round(o.value.Div(vatFactor))
			vatAcc = vatAcc.Add(o.value.Sub(base))
		}
		d70 := Round(base.Mul(share70))
		d30 := Round(base.Mul(share30))
		cc := costCenter(o.code)
		text := detail(o.name)

		r70 := row(AccountBase70, cc, o.code, text)
		r70.Debit = d70
		r30 := row(AccountBase30, cc, o.code, text)
		r30.Debit = d30
		rows = append(rows, r70, r30)

		totalBase = totalBase.Add(base)
		debits = debits.Add(d70).Add(d30)
		lastCC, lastCode = cc, o.code
	}

	summaryText := detail(b.ProviderName)
	vat := decimal.Zero
	if inv.HasVAT && vatAcc.IsPositive() {
		vat = Round(vatAcc)
		r := row(AccountVAT, lastCC, NoDestination, summaryText)
		r.Debit = vat
		rows = append(rows, r)
		debits = debits.Add(vat)
	}

	withholding := decimal.Zero
	if inv.WithholdingPct.IsPositive() {
		withholding = Round(totalBase.Mul(inv.WithholdingPct).Div(hundred))
		r := row(AccountWithholding, lastCC, lastCode, summaryText)
		r.Credit = withholding
		rows = append(rows, r)
	}

	balance := debits.Sub(withholding)
	rb := row(AccountBalance, lastCC, lastCode, summaryText)
	rb.Credit = balance
	rows = append(rows, rb)

	sum.Base = totalBase
	sum.VAT = vat
	sum.Withholding = withholding
	sum.Debits = debits
	sum.Credits = withholding.Add(balance)
	sum.Balance = balance
	sum.Rows = len(rows)
	return rows, sum, nil
}
