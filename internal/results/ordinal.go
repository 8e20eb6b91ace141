package results

import "strconv"

// Ordinal renders a 1-based rank with its English suffix: 1st, 2nd, 3rd,
// 4th... The teens 11-13 (and 111-113 etc.) always take "th".
func Ordinal(rank int) string {
	suffix := "th"
	if rank%100 < 11 || rank%100 > 13 {
		switch rank % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(rank) + suffix
}
