package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

// DefaultPrefix is used when neither the business nor the configuration
// provides one.
const DefaultPrefix = "INV"

// ErrDuplicateNumber is returned by stores when an invoice number is already
// taken within the business.
var ErrDuplicateNumber = &apperr.Error{Kind: apperr.ErrConflict, Message: "Invoice number already exists"}

// SequenceNumber formats the n-th invoice number of a business, e.g. INV-0042.
func SequenceNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", normalizePrefix(prefix), n)
}

// FallbackNumber is used when the sequence number collides with a concurrent
// insert.
func FallbackNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", normalizePrefix(prefix), now.UnixMilli())
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultPrefix
	}

	return prefix
}
