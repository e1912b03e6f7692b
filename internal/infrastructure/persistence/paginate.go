package persistence

import (
	"fmt"

	"github.com/horyco/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// normalizeFilter fills in paging defaults so offset arithmetic stays sane
func normalizeFilter(filter shared.Filter) shared.Filter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 500 {
		filter.PageSize = 20
	}
	return filter
}

// applyPaging applies whitelisted ordering and offset/limit paging to a query
func applyPaging(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.
		Order(fmt.Sprintf("%s %s", field, dir)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize)
}
