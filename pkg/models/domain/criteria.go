package domain

import "cloud.google.com/go/civil"

const AllEntities = "all"

// FilterCriteria selects records by entity and inclusive date range.
// A nil bound is unbounded on that side.
type FilterCriteria struct {
	Entity string
	Start  *civil.Date
	End    *civil.Date
}

func (c FilterCriteria) AllEntities() bool {
	return c.Entity == "" || c.Entity == AllEntities
}
