package newsletter

import (
	"strconv"
	"strings"
	"time"
)

// ExpandVars performs simple placeholder substitutions for template strings
// used in config-provided text fields (e.g., title, preface, postscript).
//
// Supported variables:
// - {.CurrentDate} => now formatted as YYYY-MM-DD in now's location
// - {.Total} => total accepted posts
func ExpandVars(s string, now time.Time, total int) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	r := strings.NewReplacer(
		"{.CurrentDate}", now.Format("2006-01-02"),
		"{.Total}", strconv.Itoa(total),
	)
	return r.Replace(s)
}
