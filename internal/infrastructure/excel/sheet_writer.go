package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Contratos-api/internal/application/ledger"
	"github.com/jhoicas/Contratos-api/internal/domain"
	"github.com/jhoicas/Contratos-api/internal/domain/accounting"
)

var _ ledger.SheetWriter = (*SheetWriter)(nil)

// SheetWriter llena la plantilla del archivo plano. La plantilla aporta formato y
// estilos; el encabezado y el detalle se reescriben en cada exportación.
type SheetWriter struct {
	templatePath string
	sheetName    string
}

// NewSheetWriter crea el writer sobre la plantilla; sin hoja usa "Archivo Plano".
func NewSheetWriter(templatePath, sheetName string) *SheetWriter {
	if sheetName == "" {
		sheetName = "Archivo Plano"
	}
	return &SheetWriter{templatePath: templatePath, sheetName: sheetName}
}

// Write abre la plantilla, escribe el encabezado en la fila 1 y el detalle desde
// accounting.FirstDataRow. Las celdas con Ref se escriben como fórmula.
func (w *SheetWriter) Write(ctx context.Context, headers []string, rows [][]accounting.Cell) ([]byte, error) {
	if w.templatePath == "" {
		return nil, domain.ErrExportTemplateMissing
	}
	if _, err := os.Stat(w.templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrExportTemplateMissing, w.templatePath)
		}
		return nil, fmt.Errorf("plantilla: %w", err)
	}

	f, err := excelize.OpenFile(w.templatePath)
	if err != nil {
		return nil, fmt.Errorf("abrir plantilla: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(w.sheetName)
	if err != nil {
		return nil, fmt.Errorf("hoja %s: %w", w.sheetName, err)
	}
	if idx < 0 {
		if idx, err = f.NewSheet(w.sheetName); err != nil {
			return nil, fmt.Errorf("crear hoja %s: %w", w.sheetName, err)
		}
	}

	if err := w.clear(f); err != nil {
		return nil, err
	}

	for col, h := range headers {
		if err := w.set(f, col+1, 1, accounting.Cell{Value: h}); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for col, cell := range row {
			if err := w.set(f, col+1, accounting.FirstDataRow+i, cell); err != nil {
				return nil, err
			}
		}
	}

	f.SetActiveSheet(idx)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializar xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *SheetWriter) set(f *excelize.File, col, row int, cell accounting.Cell) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if cell.Ref != "" {
		err = f.SetCellFormula(w.sheetName, name, cell.Ref)
	} else {
		err = f.SetCellValue(w.sheetName, name, cell.Value)
	}
	if err != nil {
		return fmt.Errorf("celda %s: %w", name, err)
	}
	return nil
}

// clear elimina el detalle previo de la plantilla. La fila del encabezado se
// conserva con su estilo; Write solo reemplaza los valores.
func (w *SheetWriter) clear(f *excelize.File) error {
	rows, err := f.GetRows(w.sheetName)
	if err != nil {
		return fmt.Errorf("leer hoja %s: %w", w.sheetName, err)
	}
	for r := len(rows); r >= accounting.FirstDataRow; r-- {
		if err := f.RemoveRow(w.sheetName, r); err != nil {
			return fmt.Errorf("limpiar fila %d: %w", r, err)
		}
	}
	return nil
}
