package utils

import "strconv"

type Pagination struct {
	Current int  `json:"current"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// ParsePage reads 1-based page and limit query values, falling back to
// page 1 and defLimit, and capping limit at maxLimit.
func ParsePage(pageStr, limitStr string, defLimit, maxLimit int) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Current: page,
		Total:   pages,
		HasNext: int64(page*limit) < total,
		HasPrev: page > 1,
	}
}
