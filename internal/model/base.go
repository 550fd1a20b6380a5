package model

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

// Default page sizes per resource, as the console has always requested them.
const (
	DefaultPageSize        = 100
	DefaultRecordPageSize  = 200
	DefaultPatientPageSize = 20
)

// WithDefaults fills unset paging fields.
func (p Pagination) WithDefaults(pageSize int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = pageSize
	}
	return p
}

// Window returns the [start, end) slice bounds of this page over n items.
// Pages past the end, and unset paging, yield the empty window [n, n).
func (p Pagination) Window(n int) (int, int) {
	if p.Page < 1 || p.PageSize < 1 || p.Page-1 > n/p.PageSize {
		return n, n
	}
	start := (p.Page - 1) * p.PageSize
	if start > n {
		start = n
	}
	end := n
	if p.PageSize < n-start {
		end = start + p.PageSize
	}
	return start, end
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
