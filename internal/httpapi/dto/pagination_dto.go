package dto

// Paginated wraps any list response with its page metadata.
type Paginated struct {
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

func NewPaginated(count int64, page, pageSize int, results interface{}) *Paginated {
	return &Paginated{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	}
}
