package excel_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
	"github.com/jhoicas/Contratos-api/internal/infrastructure/excel"
)

// template crea una plantilla con filas viejas que deben desaparecer.
func template(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	require.NoError(t, f.SetCellValue(sheet, "A1", "VIEJO"))
	require.NoError(t, f.SetCellValue(sheet, "A5", "basura"))

	path := filepath.Join(t.TempDir(), "plantilla.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWrite_EncabezadoValoresYFormulas(t *testing.T) {
	path := template(t, "Archivo Plano")
	w := excel.NewSheetWriter(path, "Archivo Plano")

	rows := [][]accounting.Cell{
		{{Value: "101 "}, {Value: 1290}, {Ref: "B2"}},
		{{Value: "101 "}, {Value: int64(38000)}, {Ref: "B3"}},
	}
	out, err := w.Write(context.Background(), []string{"EMPRESA", "NUMEDOC", "NUMCRU1"}, rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Archivo Plano")
	require.NoError(t, err)
	require.Len(t, got, 3, "las filas viejas de la plantilla se eliminan")
	assert.Equal(t, []string{"EMPRESA", "NUMEDOC", "NUMCRU1"}, got[0])

	v, err := f.GetCellValue("Archivo Plano", "A2")
	require.NoError(t, err)
	assert.Equal(t, "101 ", v, "conserva el espacio final")

	v, err = f.GetCellValue("Archivo Plano", "B3")
	require.NoError(t, err)
	assert.Equal(t, "38000", v)

	formula, err := f.GetCellFormula("Archivo Plano", "C3")
	require.NoError(t, err)
	assert.Equal(t, "B3", formula)
}

func TestWrite_ConservaEstiloDelEncabezado(t *testing.T) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "VIEJO"))
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "C1", style))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "basura"))
	path := filepath.Join(t.TempDir(), "plantilla.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := excel.NewSheetWriter(path, "Sheet1").Write(context.Background(), []string{"EMPRESA", "CLASE"}, nil)
	require.NoError(t, err)

	got, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer got.Close()

	rows, err := got.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 1, "el detalle viejo se elimina")
	assert.Equal(t, []string{"EMPRESA", "CLASE"}, rows[0])

	for _, cell := range []string{"A1", "B1"} {
		s, err := got.GetCellStyle("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, style, s, "estilo de %s", cell)
	}
}

func TestWrite_CreaHojaSiNoExiste(t *testing.T) {
	path := template(t, "Sheet1")
	w := excel.NewSheetWriter(path, "Archivo Plano")

	out, err := w.Write(context.Background(), accounting.Headers, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Archivo Plano")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 43)
	assert.Equal(t, "TIPCRU1", got[0][23])
}

func TestWrite_PlantillaInexistente(t *testing.T) {
	w := excel.NewSheetWriter(filepath.Join(t.TempDir(), "no.xlsx"), "")
	_, err := w.Write(context.Background(), accounting.Headers, nil)
	assert.ErrorIs(t, err, domain.ErrExportTemplateMissing)

	_, err = excel.NewSheetWriter("", "").Write(context.Background(), accounting.Headers, nil)
	assert.ErrorIs(t, err, domain.ErrExportTemplateMissing)
}

func TestWrite_FilaCompletaDelGenerador(t *testing.T) {
	path := template(t, "Archivo Plano")
	w := excel.NewSheetWriter(path, "Archivo Plano")

	row := accounting.Row{Document: 1290, Account: "51353502", ThirdParty: "900123456", Destination: accounting.NoDestination}
	cells := accounting.LayoutAll(accounting.DefaultLayout(), []accounting.Row{row})

	out, err := w.Write(context.Background(), accounting.Headers, cells)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	formula, err := f.GetCellFormula("Archivo Plano", "X2")
	require.NoError(t, err)
	assert.Equal(t, "D2", formula, "TIPCRU1 apunta a TIPODOC")

	v, err := f.GetCellValue("Archivo Plano", "H2")
	require.NoError(t, err)
	assert.Equal(t, "'51353502", v)
}
