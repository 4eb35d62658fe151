package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// Ticket numbers look like TKT20250001: "TKT", the four-digit year, then a
// per-year sequence zero-padded to four digits (wider once a year passes 9999).
const NumberPrefix = "TKT"

// YearPrefix returns the shared prefix of every ticket number in a year,
// e.g. "TKT2025".
func YearPrefix(year int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix, year)
}

func FormatTicketNumber(year, seq int) string {
	return fmt.Sprintf("%s%04d", YearPrefix(year), seq)
}

// NextTicketNumber computes the number following last within a year. An
// empty last (first ticket of the year) or an unparseable sequence suffix
// (corrupted data) both yield sequence 1, so creation stays available even
// when an existing row is malformed.
func NextTicketNumber(year int, last string) string {
	seq := 1
	if suffix, ok := strings.CutPrefix(last, YearPrefix(year)); ok {
		if n, err := strconv.Atoi(suffix); err == nil && n > 0 {
			seq = n + 1
		}
	}
	return FormatTicketNumber(year, seq)
}
