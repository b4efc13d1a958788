package services

// SortKey is the closed set of catalog orderings.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
	SortTitle      SortKey = "title"
	SortTitleDesc  SortKey = "title_desc"
)

var sortOrders = map[SortKey]string{
	SortNewest:     "courses.created_at DESC, courses.id DESC",
	SortPriceAsc:   "courses.price ASC, courses.id ASC",
	SortPriceDesc:  "courses.price DESC, courses.id ASC",
	SortRating:     "courses.rating DESC, courses.rating_count DESC, courses.id ASC",
	SortPopularity: "(SELECT COUNT(*) FROM enrollments WHERE enrollments.course_id = courses.id) DESC, courses.id ASC",
	SortTitle:      "courses.title ASC, courses.id ASC",
	SortTitleDesc:  "courses.title DESC, courses.id ASC",
}

// ParseSortKey maps a query value to a SortKey; unknown or empty values sort by newest.
func ParseSortKey(raw string) SortKey {
	key := SortKey(raw)
	if _, ok := sortOrders[key]; ok {
		return key
	}
	return SortNewest
}

// OrderClause is the ORDER BY body for the key.
func (k SortKey) OrderClause() string {
	if clause, ok := sortOrders[k]; ok {
		return clause
	}
	return sortOrders[SortNewest]
}
