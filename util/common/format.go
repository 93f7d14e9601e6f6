package common

import (
	"fmt"
)

// FormatPrice renders a price in minor units as a human readable string.
func FormatPrice(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
