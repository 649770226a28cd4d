package adjuster

import (
	"fmt"
)

// FormatFeeRate renders a parts per million fee rate as a percentage
// followed by the raw rate, e.g. 0.01% (100).
func FormatFeeRate(ppm int64) string {
	return fmt.Sprintf("%.2f%% (%d)", float64(ppm)/1e4, ppm)
}
