package core

// PageQuery is the common page/limit pair bound from query params.
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Clean applies defaults and bounds.
func (pq *PageQuery) Clean(defaultLimit int) {
	if pq.Page < 1 {
		pq.Page = 1
	}
	if pq.Limit < 1 {
		pq.Limit = defaultLimit
	}
}

func (pq PageQuery) Offset() int {
	return (pq.Page - 1) * pq.Limit
}

// Pagination describes one page of a result set.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"totalItems"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNextPage"`
	HasPrev    bool `json:"hasPrevPage"`
}

func NewPagination(pq PageQuery, total int) Pagination {
	pages := total / pq.Limit
	if total%pq.Limit != 0 {
		pages++
	}
	return Pagination{
		Page:       pq.Page,
		Limit:      pq.Limit,
		TotalItems: total,
		TotalPages: pages,
		HasNext:    pq.Page < pages,
		HasPrev:    pq.Page > 1 && total > 0,
	}
}
