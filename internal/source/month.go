package source

import (
	"strconv"
	"strings"
)

var monthPrefixes = map[string]int{
	"jan": 1, "fev": 2, "mar": 3, "abr": 4, "mai": 5, "jun": 6,
	"jul": 7, "ago": 8, "set": 9, "out": 10, "nov": 11, "dez": 12,
}

var monthLabels = [...]string{"", "Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthToOrdinal maps a Portuguese month label to 1..12 by its first three
// letters, ignoring case, accents and surrounding whitespace. Unknown labels
// return 0.
// e.g., " Março " -> 3, "DEZEMBRO" -> 12, "Q1" -> 0
func MonthToOrdinal(label string) int {
	s := []rune(strings.ToLower(foldAccents(strings.TrimSpace(label))))
	if len(s) > 3 {
		s = s[:3]
	}
	return monthPrefixes[string(s)]
}

// ParseMonth accepts a month label or a number 1..12.
func ParseMonth(input string) (int, bool) {
	s := strings.TrimSpace(input)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	if n, ok := ParsePlain(s); ok && n == float64(int(n)) && n >= 1 && n <= 12 {
		return int(n), true
	}
	id := MonthToOrdinal(s)
	return id, id != 0
}

// MonthLabel returns the three-letter label for an ordinal, or "?" when out of range.
func MonthLabel(id int) string {
	if id < 1 || id > 12 {
		return "?"
	}
	return monthLabels[id]
}
