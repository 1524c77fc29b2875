package inventory

import (
	"strings"

	"mazal-backend/internal/domain"
)

// ListFilter holds the inventory page's search and filter state.
type ListFilter struct {
	Query   string // matches stock number, shape, color or clarity
	Shape   string
	Color   string
	Clarity string
	Status  string
}

const DefaultPageSize = 25

// Filter applies search and per-field filters, preserving input order.
func Filter(diamonds []domain.Diamond, f ListFilter) []domain.Diamond {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Diamond, 0, len(diamonds))
	for _, d := range diamonds {
		if q != "" && !matchesQuery(d, q) {
			continue
		}
		if f.Shape != "" && !strings.EqualFold(d.Shape, f.Shape) {
			continue
		}
		if f.Color != "" && !strings.EqualFold(d.Color, f.Color) {
			continue
		}
		if f.Clarity != "" && !strings.EqualFold(d.Clarity, f.Clarity) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(d.Status, f.Status) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matchesQuery(d domain.Diamond, q string) bool {
	return strings.Contains(strings.ToLower(d.StockNumber), q) ||
		strings.Contains(strings.ToLower(d.Shape), q) ||
		strings.Contains(strings.ToLower(d.Color), q) ||
		strings.Contains(strings.ToLower(d.Clarity), q)
}

// Paginate slices one page out of diamonds. Page numbers start at 1; out-of-range
// pages return an empty slice. The second return is the total pre-pagination count.
func Paginate(diamonds []domain.Diamond, page, pageSize int) ([]domain.Diamond, int) {
	total := len(diamonds)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.Diamond{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return diamonds[start:end], total
}
