// Package normalize converts between the backend's wire payloads and the
// canonical shapes the console works with.
//
// Inbound conversions are total: they never fail, unknown backend fields are
// dropped by the JSON decoder, absent lists become empty slices and absent
// scalars stay at their zero value. Outbound conversions trim strings and
// only carry the fields the target operation accepts.
package normalize

import "strings"

// List is the paginated list envelope body the backend returns.
type List[T any] struct {
	List      []T `json:"list"`
	Total     int `json:"total"`
	Page      int `json:"page,omitempty"`
	PageSize  int `json:"pageSize,omitempty"`
	TotalDays int `json:"totalDays,omitempty"`
}

// StatusPayload is the body of every string-status PATCH.
type StatusPayload struct {
	Status string `json:"status"`
}

// Map applies fn to every element and never returns nil.
func Map[In, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// Strings returns a copy of in that is never nil.
func Strings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// NonEmpty trims every entry and drops blanks.
func NonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}
