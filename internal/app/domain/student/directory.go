package student

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/FACorreiaa/go-mentorportal/internal/app/models"
)

const DefaultPageSize = 12

// DirectoryFilter narrows the student directory. Empty fields match everything; College, City
// and Batch match exactly (ignoring case), Query matches a substring of name, email or bio.
type DirectoryFilter struct {
	College string `form:"college" json:"college,omitempty"`
	City    string `form:"city" json:"city,omitempty"`
	Batch   string `form:"batch" json:"batch,omitempty"`
	Query   string `form:"q" json:"q,omitempty"`
}

// DirectoryPage is one page of filtered results.
type DirectoryPage struct {
	Entries    []models.DirectoryEntry `json:"entries"`
	Filter     DirectoryFilter         `json:"filter"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
	Total      int                     `json:"total"`
	TotalPages int                     `json:"totalPages"`
}

func FilterDirectory(entries []models.DirectoryEntry, f DirectoryFilter) []models.DirectoryEntry {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))

	out := make([]models.DirectoryEntry, 0, len(entries))
	for _, e := range entries {
		if !matchField(e.College, f.College) || !matchField(e.City, f.City) || !matchField(e.Batch, f.Batch) {
			continue
		}
		if query != "" {
			haystack := fold.String(e.Name + "\x00" + e.Email + "\x00" + e.Bio)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func matchField(value, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(value, want)
}

// Paginate cuts page (1-based) out of entries. Out of range pages are clamped.
func Paginate(entries []models.DirectoryEntry, page, size int) DirectoryPage {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(entries)
	totalPages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}

	return DirectoryPage{
		Entries:    append([]models.DirectoryEntry{}, entries[start:end]...),
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}
