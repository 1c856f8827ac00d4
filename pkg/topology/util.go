package topology

import (
	"strings"

	"github.com/infinidb/emtools/pkg/utils"
)

func Choose(ok bool, first, second string) string {
	if ok {
		return first
	}
	return second
}

// isRoleOf reports whether role is a numbered role of the given kind, e.g. um3
func isRoleOf(role, kind string) bool {
	if !strings.HasPrefix(role, kind) {
		return false
	}
	n, ok := utils.Str2Int(strings.TrimPrefix(role, kind))
	return ok && n > 0
}

// isEmptyString trim the left and right space of a string, if "" return true, else return false
func isEmptyString(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// trimString trim the left and right space and '/' right of string
func trimString(s string) string {
	ret := strings.TrimSpace(s)
	ret = strings.TrimSuffix(ret, "/")
	return ret
}
