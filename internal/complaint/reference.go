package complaint

import (
	"strconv"
	"strings"

	"kavyashar.org/intake/internal/clock"
)

const referencePrefix = "KY-"

// NewReference returns KY- followed by the clock's Unix milliseconds in
// upper-case base 36.
func NewReference(c clock.Clock) string {
	return ReferenceAt(c.NowUnixMilli())
}

func ReferenceAt(unixMilli int64) string {
	return referencePrefix + strings.ToUpper(strconv.FormatInt(unixMilli, 36))
}

// IsReference reports whether s has the shape NewReference produces.
func IsReference(s string) bool {
	rest, ok := strings.CutPrefix(s, referencePrefix)
	if !ok || rest == "" || rest != strings.ToUpper(rest) {
		return false
	}
	_, err := strconv.ParseInt(rest, 36, 64)
	return err == nil
}
