package services

import (
	"sort"

	"github.com/yeremiapane/table-ordering/utils"
)

func sortByUsername[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return utils.NaturalLess(name(items[i]), name(items[j]))
	})
}
