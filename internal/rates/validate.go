package rates

import "strings"

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validCode accepts exactly three ASCII letters.
func validCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
