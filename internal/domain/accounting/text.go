package accounting

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxDetailLength longitud máxima de DETALLE aceptada por el importador.
const MaxDetailLength = 250

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName nombre en español del mes.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Detail arma el texto de DETALLE: "Fact <número>, <nombre>, <mes>".
func Detail(invoiceNumber, name string, billing time.Time) string {
	parts := []string{"Fact " + strings.TrimSpace(invoiceNumber)}
	if n := strings.TrimSpace(name); n != "" {
		parts = append(parts, n)
	}
	if !billing.IsZero() {
		parts = append(parts, MonthName(billing.Month()))
	}
	return normalizeDetail(strings.Join(parts, ", "))
}

func normalizeDetail(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if r := []rune(s); len(r) > MaxDetailLength {
		s = string(r[:MaxDetailLength])
	}
	return s
}

// FileName nombre del archivo plano: archivo_plano_<nit>_<yyyymmdd>.xlsx, sin tildes ni separadores raros.
func FileName(providerTaxID string, causation time.Time) string {
	return fmt.Sprintf("archivo_plano_%s_%s.xlsx", safeToken(providerTaxID), causation.Format("20060102"))
}

func safeToken(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		clean = s
	}
	var b strings.Builder
	for _, r := range clean {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "sin_nit"
	}
	return b.String()
}
