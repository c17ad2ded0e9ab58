package utils

import "fmt"

// sequenceNumberWidth is the fixed width of the numeric part of a fiscal
// document number (DGII comprobante format: prefix + 8 digits).
const sequenceNumberWidth = 8

// FormatSequenceNumber renders a fiscal document number, e.g.
// ("B01", 7) -> "B0100000007".
func FormatSequenceNumber(prefix string, number int64) string {
	return fmt.Sprintf("%s%0*d", prefix, sequenceNumberWidth, number)
}
