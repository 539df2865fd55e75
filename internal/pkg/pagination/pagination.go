package pagination

import (
	"fmt"
	"math"
)

// Summary returns the page count and a "1-20 of 45" style label. A page
// past the end is labelled "0 of 45".
func Summary(page, limit int, total int64) (totalPages int, showing string) {
	if limit <= 0 || total == 0 {
		return 0, "0 of 0"
	}
	if page < 1 {
		page = 1
	}
	totalPages = int(math.Ceil(float64(total) / float64(limit)))
	first := int64(page-1)*int64(limit) + 1
	if first > total {
		return totalPages, fmt.Sprintf("0 of %d", total)
	}
	showing = fmt.Sprintf("%d-%d of %d", first, min(int64(page)*int64(limit), total), total)
	return totalPages, showing
}

// Window returns the [start, end) slice bounds of page within n items.
func Window(n, page, limit int) (start, end int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return 0, n
	}
	start = min((page-1)*limit, n)
	end = min(start+limit, n)
	return start, end
}

// Offset is the SQL OFFSET for page.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}
