// feed.go implements the filtered, sorted, paginated listing of published
// projects and the aggregate statistics queries behind the overview
// endpoints.
package store

import (
	"fmt"
	"strings"
	"time"

	"diyhub/internal/models"
)

const (
	// DefaultPageSize is the feed page size when the caller does not set one.
	DefaultPageSize = 12

	// MaxPageSize caps the page size a caller can request.
	MaxPageSize = 100
)

// sortColumns whitelists the fields a caller may sort by. Anything else
// falls back to createdAt.
var sortColumns = map[string]string{
	"createdAt": "p.created_at",
	"updatedAt": "p.updated_at",
	"title":     "p.title",
	"views":     "p.views",
	"totalCost": "p.total_cost",
}

// ListFilter holds the feed query parameters. The zero value lists the
// first page of all published projects, newest first.
type ListFilter struct {
	Category     string // "" or "all" means any
	Difficulty   string // "" or "all" means any
	FeaturedOnly bool
	Search       string
	SortBy       string // whitelisted; falls back to createdAt
	SortOrder    string // "asc" or "desc" (default)
	Page         int    // 1-indexed
	Limit        int
}

// Normalize applies defaults and bounds. List calls it internally;
// callers that derive pagination arithmetic from the filter must call it
// first so they see the same effective page and limit the query used.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// SortColumn resolves the whitelisted ORDER BY column for the filter.
func (f *ListFilter) SortColumn() string {
	if col, ok := sortColumns[f.SortBy]; ok {
		return col
	}
	return sortColumns["createdAt"]
}

// SortDirection resolves the ORDER BY direction, defaulting to descending.
func (f *ListFilter) SortDirection() string {
	if strings.EqualFold(f.SortOrder, "asc") {
		return "ASC"
	}
	return "DESC"
}

// Offset returns the row offset for the filter's page.
func (f *ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// buildWhere assembles the WHERE clause and its arguments. Published-only
// is always the base predicate and cannot be overridden.
func (f *ListFilter) buildWhere() (string, []any) {
	conds := []string{"p.is_published = TRUE"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" && f.Category != "all" {
		conds = append(conds, "p.category = "+arg(f.Category))
	}
	if f.Difficulty != "" && f.Difficulty != "all" {
		conds = append(conds, "p.difficulty = "+arg(f.Difficulty))
	}
	if f.FeaturedOnly {
		conds = append(conds, "p.is_featured = TRUE")
	}

	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(
			`(p.title ILIKE %[1]s OR p.description ILIKE %[1]s OR p.category ILIKE %[1]s
			  OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(p.tags) tag WHERE tag ILIKE %[1]s))`,
			pattern))
	}

	return strings.Join(conds, " AND "), args
}

// List executes the feed query: filters and search combined with AND,
// whitelisted sort, offset pagination. Returns the page of projects and
// the total match count.
func (s *ProjectStore) List(f ListFilter) ([]models.Project, int, error) {
	f.Normalize()
	where, args := f.buildWhere()

	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM projects p WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM projects p JOIN users u ON u.id = p.author_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, projectColumns, where, f.SortColumn(), f.SortDirection(), len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset())

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// ListFeatured returns the most recent featured published projects, capped
// at limit.
func (s *ProjectStore) ListFeatured(limit int) ([]models.Project, error) {
	if limit < 1 {
		limit = 6
	}

	rows, err := s.db.Query(`
		SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.author_id
		WHERE p.is_published = TRUE AND p.is_featured = TRUE
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// GroupCount is one bucket of a GROUP BY aggregation.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountPublished returns the number of published projects, optionally
// created after the given time (zero time means no lower bound).
func (s *ProjectStore) CountPublished(since time.Time) (int, error) {
	var count int
	var err error
	if since.IsZero() {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE is_published = TRUE`).Scan(&count)
	} else {
		err = s.db.QueryRow(`
			SELECT COUNT(*) FROM projects WHERE is_published = TRUE AND created_at >= $1
		`, since).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count published: %w", err)
	}
	return count, nil
}

// CountByCategory returns published project counts grouped by category,
// most populated first.
func (s *ProjectStore) CountByCategory() ([]GroupCount, error) {
	return s.groupCounts("category")
}

// CountByDifficulty returns published project counts grouped by difficulty,
// most populated first.
func (s *ProjectStore) CountByDifficulty() ([]GroupCount, error) {
	return s.groupCounts("difficulty")
}

func (s *ProjectStore) groupCounts(column string) ([]GroupCount, error) {
	// column is a compile-time constant ("category" or "difficulty"),
	// never caller input.
	rows, err := s.db.Query(`
		SELECT ` + column + `, COUNT(*) AS count
		FROM projects WHERE is_published = TRUE
		GROUP BY ` + column + ` ORDER BY count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	var counts []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Name, &gc.Count); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}
