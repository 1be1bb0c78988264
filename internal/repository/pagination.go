package repository

import "math"

// ItemsPerPage is the fixed page size of every paginated listing.
const ItemsPerPage = 6

// maxPage is the last page whose offset fits in an int.
const maxPage = math.MaxInt / ItemsPerPage

// offsetFor converts a 1-based page number into a row offset. Pages below 1
// are treated as the first page and pages past maxPage as maxPage, so the
// offset is never negative.
func offsetFor(page int) int {
	page = max(1, min(page, maxPage))
	return (page - 1) * ItemsPerPage
}

// pageCount returns ceil(rows / ItemsPerPage).
func pageCount(rows int64) int {
	if rows <= 0 {
		return 0
	}
	return int((rows + ItemsPerPage - 1) / ItemsPerPage)
}

// likePattern wraps the search term for a substring ILIKE match.
func likePattern(query string) string {
	return "%" + query + "%"
}
