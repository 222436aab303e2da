package suppliers

import (
	"strings"
	"time"
)

type Supplier struct {
	ID        int64
	Name      string
	Contact   string
	Phone     string
	Email     string
	Notes     string
	CreatedAt time.Time
}

// NormalizeName is applied once, before a name is written or looked up;
// lookups then match exactly.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
