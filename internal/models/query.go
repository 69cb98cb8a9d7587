package models

import "strings"

// Filter selects a subset of an owner's tasks.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// Filters lists every supported filter in display order.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterOverdue}

// ParseFilter maps a query value to a Filter. Unknown values yield FilterAll.
func ParseFilter(s string) Filter {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterPending, FilterCompleted, FilterOverdue:
		return f
	default:
		return FilterAll
	}
}

// Sort orders a task list.
type Sort string

const (
	SortCreated Sort = "created"
	SortDate    Sort = "date"
	SortTitle   Sort = "title"
)

// Sorts lists every supported sort key in display order.
var Sorts = []Sort{SortCreated, SortDate, SortTitle}

// ParseSort maps a query value to a Sort. Unknown values yield SortCreated.
func ParseSort(s string) Sort {
	switch o := Sort(strings.ToLower(strings.TrimSpace(s))); o {
	case SortCreated, SortDate, SortTitle:
		return o
	default:
		return SortCreated
	}
}
