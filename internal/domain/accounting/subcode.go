package accounting

import "strings"

// SubCode deriva el código a consultar en el directorio a partir del código de oficina.
// 7 o más dígitos -> primeros 4; 6 -> 3; 5 -> 2; 4 -> 1; más cortos se usan completos.
func SubCode(officeCode string) string {
	code := strings.TrimSpace(officeCode)
	r := []rune(code)
	switch n := len(r); {
	case n >= 7:
		return string(r[:4])
	case n == 6:
		return string(r[:3])
	case n == 5:
		return string(r[:2])
	case n == 4:
		return string(r[:1])
	default:
		return code
	}
}
