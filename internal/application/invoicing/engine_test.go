package invoicing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Contratos-api/internal/application/dto"
	"github.com/jhoicas/Contratos-api/internal/application/invoicing"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/entity"
	"github.com/jhoicas/Contratos-api/pkg/logger"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memStore
	dir     *fakeDirectory
	reader  *invoicing.InvoiceQueries
	engine  *invoicing.AssignmentEngine
	pending *invoicing.PendingDetector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := newMemStore()
	s.addProvider(entity.Provider{ID: "prov-1", TaxID: "900123456", Name: "Claro Colombia", CreatedAt: fixedNow})
	s.addOffice(entity.Office{ID: "of-1", Code: "0101", Name: "Principal"})
	s.addOffice(entity.Office{ID: "of-2", Code: "0205", Name: "Norte"})
	s.addOffice(entity.Office{ID: "of-3", Code: "0310", Name: "Sur"})
	s.addContract(entity.Contract{ID: "ct-old", ProviderID: "prov-1", OfficeID: "of-1", Status: entity.ContractCancelled, CreatedAt: fixedNow.Add(-48 * time.Hour)})
	s.addContract(entity.Contract{ID: "ct-1", ProviderID: "prov-1", OfficeID: "of-1", Status: entity.ContractActive, CreatedAt: fixedNow.Add(-24 * time.Hour)})

	dir := &fakeDirectory{names: map[string]string{}}
	reader := invoicing.NewInvoiceQueries(s.invoiceRepo(), s.assignmentRepo(), s.providerRepo(), s.officeRepo())
	engine := invoicing.NewAssignmentEngine(s, reader, dir, logger.Nop()).WithClock(func() time.Time { return fixedNow })
	pending := invoicing.NewPendingDetector(s.contractRepo(), s.assignmentRepo(), s.providerRepo(), s.officeRepo())
	return &fixture{store: s, dir: dir, reader: reader, engine: engine, pending: pending}
}

func (f *fixture) createBare(t *testing.T, number string) *dto.InvoiceResponse {
	t.Helper()
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderID:  "prov-1",
		Number:      number,
		InvoiceDate: "2024-03-05",
		Value:       decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	return inv
}

func office(id string, value int64) dto.OfficeAssignmentInput {
	return dto.OfficeAssignmentInput{OfficeID: id, Value: decimal.NewFromInt(value)}
}

// assertInvariant PENDIENTE si y solo si no hay asignaciones.
func (f *fixture) assertInvariant(t *testing.T, invoiceID string) {
	t.Helper()
	inv := f.store.invoice(invoiceID)
	require.NotNil(t, inv)
	n := f.store.countAssignments(invoiceID)
	if inv.LegacyOfficeID == "" {
		assert.Equal(t, n == 0, inv.Status == entity.InvoicePending, "estado %s con %d asignaciones", inv.Status, n)
	}
}

// ── CreateInvoice ─────────────────────────────────────────────────────────────

func TestCreateInvoice_SinOficinasQuedaPendiente(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-1")

	assert.Equal(t, "PENDIENTE", inv.Status)
	assert.Empty(t, inv.Assignments)
	assert.Equal(t, "Claro Colombia", inv.ProviderName)
	assert.Equal(t, "2024-03-05", inv.InvoiceDate)
	f.assertInvariant(t, inv.ID)
}

func TestCreateInvoice_ConOficinasQuedaAsignadaConContrato(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderID: "prov-1",
		Number:     "FE-2",
		Value:      decimal.NewFromInt(300000),
		Offices:    []dto.OfficeAssignmentInput{office("of-1", 100000), office("of-2", 200000)},
	})
	require.NoError(t, err)

	assert.Equal(t, "ASIGNADA", inv.Status)
	require.Len(t, inv.Assignments, 2)
	assert.Equal(t, "ct-1", inv.Assignments[0].ContractID, "el contrato ACTIVO gana sobre el CANCELADO")
	assert.Equal(t, "Principal", inv.Assignments[0].OfficeName)
	assert.Empty(t, inv.Assignments[1].ContractID, "sin contrato para of-2")
	assert.False(t, inv.HasDiscrepancy)
	assert.True(t, inv.AssignedTotal.Equal(decimal.NewFromInt(300000)))
	f.assertInvariant(t, inv.ID)
}

func TestCreateInvoice_CodigosNoEncontradosSeAnotan(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderID: "prov-1",
		Number:     "FE-3",
		Value:      decimal.NewFromInt(50000),
		Notes:      "Servicio marzo",
		Offices: []dto.OfficeAssignmentInput{
			{OfficeCode: "0101", Value: decimal.NewFromInt(30000)},
			{OfficeCode: "9999", Value: decimal.NewFromInt(20000)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ASIGNADA", inv.Status)
	require.Len(t, inv.Assignments, 1)
	assert.Equal(t, "Servicio marzo [ADVERTENCIA: Oficinas no encontradas: 9999]", inv.Notes)
	assert.True(t, inv.HasDiscrepancy, "30000 asignado contra 50000 facturado")
}

func TestCreateInvoice_SoloCodigosInexistentesQuedaPendiente(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderID: "prov-1",
		Number:     "FE-4",
		Value:      decimal.NewFromInt(1000),
		Offices:    []dto.OfficeAssignmentInput{{OfficeCode: "X1", Value: decimal.NewFromInt(1000)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", inv.Status)
	assert.Equal(t, "[ADVERTENCIA: Oficinas no encontradas: X1]", inv.Notes)
	f.assertInvariant(t, inv.ID)
}

func TestCreateInvoice_OficinaPorIDInexistenteAborta(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderID: "prov-1",
		Number:     "FE-5",
		Value:      decimal.NewFromInt(1000),
		Offices:    []dto.OfficeAssignmentInput{office("no-existe", 1000)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.store.invoices, "la transacción no deja la factura")
}

func TestCreateInvoice_ProveedorNuevoPorNitYNombre(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderTaxID: "800555111",
		ProviderName:  "Movistar",
		Number:        "M-1",
		Value:         decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Movistar", inv.ProviderName)
	assert.Equal(t, "800555111", inv.ProviderTaxID)
	assert.Len(t, f.store.providers, 2)
	assert.Zero(t, f.dir.calls, "con nombre no se consulta el directorio")
}

func TestCreateInvoice_ProveedorExistentePorNit(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderTaxID: "900123456",
		Number:        "C-9",
		Value:         decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "prov-1", inv.ProviderID)
	assert.Len(t, f.store.providers, 1)
}

func TestCreateInvoice_NombreDesdeDirectorio(t *testing.T) {
	f := newFixture(t)
	f.dir.names["811000222"] = "ETB S.A."
	inv, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderTaxID: "811000222",
		Number:        "E-1",
		Value:         decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "ETB S.A.", inv.ProviderName)
	assert.Equal(t, 1, f.dir.calls)
}

func TestCreateInvoice_ProveedorNoResoluble(t *testing.T) {
	f := newFixture(t)
	f.dir.err = domain.ErrDirectoryUnavailable
	_, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{
		ProviderTaxID: "123",
		Number:        "E-2",
		Value:         decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderResolution)
	var pre *domain.ProviderResolutionError
	require.True(t, errors.As(err, &pre))
	assert.Equal(t, "123", pre.TaxID)
	assert.NotEmpty(t, pre.Hint)
	assert.Zero(t, f.store.txCount, "no se abre transacción")
}

func TestCreateInvoice_SinProveedor(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{Number: "X", Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrProviderResolution)
}

func TestCreateInvoice_ProveedorIDInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateInvoice(context.Background(), dto.CreateInvoiceRequest{ProviderID: "nope", Number: "X", Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		req  dto.CreateInvoiceRequest
		want error
	}{
		{"sin número", dto.CreateInvoiceRequest{ProviderID: "prov-1"}, domain.ErrInvalidInput},
		{"valor negativo", dto.CreateInvoiceRequest{ProviderID: "prov-1", Number: "N", Value: decimal.NewFromInt(-1)}, domain.ErrNegativeValue},
		{"fecha inválida", dto.CreateInvoiceRequest{ProviderID: "prov-1", Number: "N", InvoiceDate: "05/03/2024"}, domain.ErrInvalidInput},
		{"oficina negativa", dto.CreateInvoiceRequest{ProviderID: "prov-1", Number: "N", Offices: []dto.OfficeAssignmentInput{office("of-1", -5)}}, domain.ErrNegativeValue},
		{"oficina sin id ni código", dto.CreateInvoiceRequest{ProviderID: "prov-1", Number: "N", Offices: []dto.OfficeAssignmentInput{{Value: decimal.NewFromInt(1)}}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.CreateInvoice(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ── asignaciones ──────────────────────────────────────────────────────────────

func TestAddOfficeAssignment_PasaAAsignada(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-10")

	a, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 40000))
	require.NoError(t, err)
	assert.Equal(t, "ct-1", a.ContractID)
	assert.Equal(t, "PENDIENTE", a.Status)
	assert.Equal(t, "0101", a.OfficeCode)

	got, err := f.reader.GetInvoice(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "ASIGNADA", got.Status)
	f.assertInvariant(t, inv.ID)
}

func TestAddOfficeAssignment_PorCodigo(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-11")
	a, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, dto.OfficeAssignmentInput{OfficeCode: "0205", Value: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "of-2", a.OfficeID)
}

func TestAddOfficeAssignment_Errores(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-12")

	_, err := f.engine.AddOfficeAssignment(context.Background(), "no-existe", office("of-1", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-x", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", -1))
	assert.ErrorIs(t, err, domain.ErrNegativeValue)

	assert.Equal(t, entity.InvoicePending, f.store.invoice(inv.ID).Status)
}

func TestAddOfficeAssignment_ConservaPagada(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-13")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)
	_, err = f.engine.ChangeStatus(context.Background(), inv.ID, "pagada")
	require.NoError(t, err)

	_, err = f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-2", 1))
	require.NoError(t, err)
	assert.Equal(t, entity.InvoicePaid, f.store.invoice(inv.ID).Status)
}

func TestRemoveOfficeAssignment_UltimaVuelveAPendiente(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-20")
	a1, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)
	a2, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-2", 1))
	require.NoError(t, err)

	ok, err := f.engine.RemoveOfficeAssignment(context.Background(), a1.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.InvoiceAssigned, f.store.invoice(inv.ID).Status, "queda una oficina")

	ok, err = f.engine.RemoveOfficeAssignment(context.Background(), a2.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.InvoicePending, f.store.invoice(inv.ID).Status)
	f.assertInvariant(t, inv.ID)
}

func TestRemoveOfficeAssignment_Inexistente(t *testing.T) {
	f := newFixture(t)
	ok, err := f.engine.RemoveOfficeAssignment(context.Background(), "nada")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceAllOfficeAssignments(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-30")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)

	got, err := f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, []dto.OfficeAssignmentInput{
		office("of-2", 60000), office("of-3", 40000),
	})
	require.NoError(t, err)
	require.Len(t, got.Assignments, 2)
	assert.Equal(t, "of-2", got.Assignments[0].OfficeID)
	assert.Equal(t, "of-3", got.Assignments[1].OfficeID)
	assert.Equal(t, "ASIGNADA", got.Status)
	assert.False(t, got.HasDiscrepancy)

	got, err = f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Assignments)
	assert.Equal(t, "PENDIENTE", got.Status)
	f.assertInvariant(t, inv.ID)
}

func TestReplaceAllOfficeAssignments_ConservaPagada(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-31")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)
	_, err = f.engine.ChangeStatus(context.Background(), inv.ID, "pagada")
	require.NoError(t, err)

	got, err := f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, []dto.OfficeAssignmentInput{office("of-2", 1)})
	require.NoError(t, err)
	assert.Equal(t, "PAGADA", got.Status)

	got, err = f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "PENDIENTE", got.Status, "sin oficinas vuelve a pendiente")
}

func TestReplaceAllOfficeAssignments_OficinaInexistenteNoTocaNada(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-31")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)

	_, err = f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, []dto.OfficeAssignmentInput{
		office("of-2", 1), {OfficeCode: "9999", Value: decimal.NewFromInt(1)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.reader.ListAssignments(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "of-1", list[0].OfficeID)
}

func TestReplaceAllOfficeAssignments_FalloAMitadRevierte(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-32")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)

	f.store.failAssignmentForOffice = "of-3"
	_, err = f.engine.ReplaceAllOfficeAssignments(context.Background(), inv.ID, []dto.OfficeAssignmentInput{
		office("of-2", 1), office("of-3", 1),
	})
	require.ErrorIs(t, err, errInjected)

	list, err := f.reader.ListAssignments(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "el estado previo se conserva")
	assert.Equal(t, "of-1", list[0].OfficeID)
	assert.Equal(t, entity.InvoiceAssigned, f.store.invoice(inv.ID).Status)
}

func TestUpdateOfficeAssignment(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-40")
	a, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 10))
	require.NoError(t, err)

	notes := "pagado en caja"
	got, err := f.engine.UpdateOfficeAssignment(context.Background(), a.ID, dto.UpdateAssignmentRequest{
		Value: decimal.NewFromInt(25), Status: "pagada", Notes: &notes,
	})
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "PAGADA", got.Status)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, "ct-1", got.ContractID, "el contrato no se recalcula")

	_, err = f.engine.UpdateOfficeAssignment(context.Background(), a.ID, dto.UpdateAssignmentRequest{Status: "ASIGNADA"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.engine.UpdateOfficeAssignment(context.Background(), "nada", dto.UpdateAssignmentRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── estado ────────────────────────────────────────────────────────────────────

func TestChangeStatus_Reglas(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-50")

	_, err := f.engine.ChangeStatus(context.Background(), inv.ID, "ANULADA")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.engine.ChangeStatus(context.Background(), inv.ID, "ASIGNADA")
	assert.ErrorIs(t, err, domain.ErrStatusConflict, "sin oficinas no puede quedar ASIGNADA")

	_, err = f.engine.ChangeStatus(context.Background(), inv.ID, "PAGADA")
	assert.ErrorIs(t, err, domain.ErrStatusConflict)

	_, err = f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)

	_, err = f.engine.ChangeStatus(context.Background(), inv.ID, "PENDIENTE")
	assert.ErrorIs(t, err, domain.ErrStatusConflict, "con oficinas no puede volver a PENDIENTE")

	got, err := f.engine.ChangeStatus(context.Background(), inv.ID, " pagada ")
	require.NoError(t, err)
	assert.Equal(t, "PAGADA", got.Status)

	_, err = f.engine.ChangeStatus(context.Background(), "nada", "PAGADA")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssignSingleOffice_RutaLegacy(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-60")

	got, err := f.engine.AssignSingleOffice(context.Background(), inv.ID, "of-1")
	require.NoError(t, err)
	assert.Equal(t, "ASIGNADA", got.Status)
	assert.Equal(t, "of-1", got.LegacyOfficeID)
	assert.Equal(t, "ct-1", got.LegacyContractID)
	assert.Empty(t, got.Assignments)

	got, err = f.engine.ChangeStatus(context.Background(), inv.ID, "PAGADA")
	require.NoError(t, err, "la oficina legacy cuenta para el estado")
	assert.Equal(t, "PAGADA", got.Status)

	_, err = f.engine.AssignSingleOffice(context.Background(), inv.ID, "of-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.engine.AssignSingleOffice(context.Background(), inv.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvariante_SecuenciaDeOperaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.createBare(t, "FE-70")
	offices := []string{"of-1", "of-2", "of-3"}
	var ids []string

	for i := 0; i < 12; i++ {
		switch i % 4 {
		case 0, 1:
			a, err := f.engine.AddOfficeAssignment(ctx, inv.ID, office(offices[i%3], int64(i+1)))
			require.NoError(t, err)
			ids = append(ids, a.ID)
		case 2:
			if len(ids) > 0 {
				_, err := f.engine.RemoveOfficeAssignment(ctx, ids[0])
				require.NoError(t, err)
				ids = ids[1:]
			}
		case 3:
			var in []dto.OfficeAssignmentInput
			if i%8 == 3 {
				in = []dto.OfficeAssignmentInput{office("of-2", 5)}
			}
			got, err := f.engine.ReplaceAllOfficeAssignments(ctx, inv.ID, in)
			require.NoError(t, err)
			ids = ids[:0]
			for _, a := range got.Assignments {
				ids = append(ids, a.ID)
			}
		}
		f.assertInvariant(t, inv.ID)
	}
}

// ── cabecera ──────────────────────────────────────────────────────────────────

func TestUpdateInvoice_CamposParciales(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-80")

	number := "FE-80B"
	value := decimal.NewFromInt(120000)
	empty := ""
	got, err := f.engine.UpdateInvoice(context.Background(), inv.ID, dto.UpdateInvoiceRequest{
		Number: &number, Value: &value, InvoiceDate: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "FE-80B", got.Number)
	assert.True(t, got.Value.Equal(value))
	assert.Empty(t, got.InvoiceDate, "cadena vacía borra la fecha")
	assert.Equal(t, "PENDIENTE", got.Status)

	_, err = f.engine.UpdateInvoice(context.Background(), inv.ID, dto.UpdateInvoiceRequest{Number: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	neg := decimal.NewFromInt(-3)
	_, err = f.engine.UpdateInvoice(context.Background(), inv.ID, dto.UpdateInvoiceRequest{Value: &neg})
	assert.ErrorIs(t, err, domain.ErrNegativeValue)
}

func TestDeleteInvoice_BorraAsignaciones(t *testing.T) {
	f := newFixture(t)
	inv := f.createBare(t, "FE-90")
	_, err := f.engine.AddOfficeAssignment(context.Background(), inv.ID, office("of-1", 1))
	require.NoError(t, err)

	require.NoError(t, f.engine.DeleteInvoice(context.Background(), inv.ID))
	assert.Nil(t, f.store.invoice(inv.ID))
	assert.Zero(t, f.store.countAssignments(inv.ID))

	err = f.engine.DeleteInvoice(context.Background(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── lecturas ──────────────────────────────────────────────────────────────────

func TestListInvoices_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	a := f.createBare(t, "L-1")
	f.createBare(t, "L-2")
	_, err := f.engine.AddOfficeAssignment(context.Background(), a.ID, office("of-1", 1))
	require.NoError(t, err)

	got, err := f.reader.ListInvoices(context.Background(), dto.InvoiceListRequest{Status: "asignada"})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "L-1", got.Items[0].Number)
	assert.Equal(t, 1, got.Page.Total)
	assert.Equal(t, 20, got.Page.Limit)

	_, err = f.reader.ListInvoices(context.Background(), dto.InvoiceListRequest{Status: "OTRO"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = f.reader.ListInvoices(context.Background(), dto.InvoiceListRequest{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.createBare(t, fmt.Sprintf("S-%d", i))
	}
	got, err := f.reader.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 3, got.Pending)
}
