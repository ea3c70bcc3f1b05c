package rates

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cache keys are stable across restarts so a shared backend keeps working.
// Currency codes are upper-cased before any key is built.

func latestKey(base string) string {
	return "rates:" + base
}

func conversionKey(from, to string, amount decimal.Decimal) string {
	return "conv:" + from + ":" + to + ":" + amount.String()
}

func historicalKey(base, start, end string, page, pageSize int) string {
	return fmt.Sprintf("hist:%s:%s:%s:%d:%d", base, start, end, page, pageSize)
}
