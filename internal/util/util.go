package util

func IfEmptyElse(str string, def string) string {
	if str == "" {
		return def
	}
	return str
}

// IsUintString reports whether s is a non-empty string of decimal
// digits, the shape required for smallest-unit amounts and fee values.
func IsUintString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
