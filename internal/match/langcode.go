package match

import "strings"

// SimplerCode returns the next more general variant of a language code, or
// "" when no simpler variant exists. Used during backend language
// negotiation to walk, for example, "pt_BR@latin" -> "pt_BR" -> "pt" -> "".
func SimplerCode(code string) string {
	if code == "" {
		return ""
	}
	if i := strings.LastIndex(code, "@"); i >= 0 {
		return code[:i]
	}
	if i := strings.LastIndexAny(code, "_-"); i >= 0 {
		return code[:i]
	}
	return ""
}
