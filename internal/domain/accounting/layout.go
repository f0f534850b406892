package accounting

import (
	"fmt"
	"strings"
)

// Headers encabezado fijo del archivo plano (fila 1). El orden es parte del contrato con el importador.
var Headers = []string{
	"EMPRESA", "CLASE", "VINKEY", "TIPODOC", "NUMEDOC", "REG", "FECHA", "CUENTA", "VINCULADO",
	"SUCVIN", "SUCURS", "CCOSTO", "DESTINO", "VENDE", "COBRA", "ZONA", "BODEGA", "PRODUCTO",
	"UNIMED", "LOTEPRO", "CANTIDAD", "CLASEINV", "CLACRU1", "TIPCRU1", "NUMCRU1", "CUOCRU1",
	"FECINI", "PLAZO", "CLACRU2", "TIPCRU2", "NUMCRU2", "CUOCRU2", "VALDEBI", "VALCRED",
	"PARCI_O", "TPREG", "DETALLE", "SERIAL", "FORMAPAGO", "DV_REFERENCIA", "DV_MOTIVO",
	"DOCRESPALD", "DOCPLAZO",
}

// FirstDataRow fila donde empieza el detalle (la 1 es el encabezado).
const FirstDataRow = 2

const filler = "."

// Cell valor de una celda. Si Ref no está vacío la celda es una referencia a otra columna de la misma fila.
type Cell struct {
	Value any
	Ref   string
}

// Display representación de la celda para la vista previa.
func (c Cell) Display() any {
	if c.Ref != "" {
		return "=" + c.Ref
	}
	return c.Value
}

// LayoutConfig constantes del documento contable.
type LayoutConfig struct {
	Company       string // "101 "
	DocumentClass string // "0000 "
	DocumentType  string // "DC07"
}

// DefaultLayout valores históricos del importador.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{Company: "101 ", DocumentClass: "0000 ", DocumentType: "DC07"}
}

func quoted(s string) string { return "'" + s }

// Layout convierte una fila contable en las 43 celdas, para la fila sheetRow de la hoja.
// TIPCRU1, NUMCRU1, FECINI y DOCRESPALD son referencias a D, E y G de la misma fila.
func Layout(cfg LayoutConfig, r Row, sheetRow int) []Cell {
	ref := func(col string) Cell { return Cell{Ref: fmt.Sprintf("%s%d", col, sheetRow)} }
	val := func(v any) Cell { return Cell{Value: v} }

	dest := r.Destination
	if dest != NoDestination {
		dest = quoted(dest)
	}
	var date string
	if !r.Date.IsZero() {
		date = quoted(r.Date.Format("2006/01/02"))
	}

	return []Cell{
		val(cfg.Company),                      // EMPRESA
		val(cfg.DocumentClass),                // CLASE
		val(filler),                           // VINKEY
		val(quoted(cfg.DocumentType)),         // TIPODOC
		val(r.Document),                       // NUMEDOC
		val(0),                                // REG
		val(date),                             // FECHA
		val(quoted(r.Account)),                // CUENTA
		val(quoted(r.ThirdParty)),             // VINCULADO
		val(filler),                           // SUCVIN
		val(filler),                           // SUCURS
		val(strings.TrimSpace(r.CostCenter)),  // CCOSTO
		val(dest),                             // DESTINO
		val(filler),                           // VENDE
		val(filler),                           // COBRA
		val(filler),                           // ZONA
		val(filler),                           // BODEGA
		val(filler),                           // PRODUCTO
		val(filler),                           // UNIMED
		val(filler),                           // LOTEPRO
		val(0),                                // CANTIDAD
		val(filler),                           // CLASEINV
		val(cfg.DocumentClass),                // CLACRU1
		ref("D"),                              // TIPCRU1
		ref("E"),                              // NUMCRU1
		val(0),                                // CUOCRU1
		ref("G"),                              // FECINI
		val(0),                                // PLAZO
		val(filler),                           // CLACRU2
		val(filler),                           // TIPCRU2
		val(0),                                // NUMCRU2
		val(0),                                // CUOCRU2
		val(r.Debit.IntPart()),                // VALDEBI
		val(r.Credit.IntPart()),               // VALCRED
		val(0),                                // PARCI_O
		val("1"),                              // TPREG
		val(r.Detail),                         // DETALLE
		val(filler),                           // SERIAL
		val(filler),                           // FORMAPAGO
		val(filler),                           // DV_REFERENCIA
		val(filler),                           // DV_MOTIVO
		ref("E"),                              // DOCRESPALD
		val(0),                                // DOCPLAZO
	}
}

// LayoutAll serializa todas las filas a partir de FirstDataRow.
func LayoutAll(cfg LayoutConfig, rows []Row) [][]Cell {
	out := make([][]Cell, 0, len(rows))
	for i, r := range rows {
		out = append(out, Layout(cfg, r, FirstDataRow+i))
	}
	return out
}
