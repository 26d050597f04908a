package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Actor is the authenticated caller on whose behalf a use case runs.
type Actor struct {
	SchoolID uint
	UserID   uint
	Role     string
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup from free text before it is stored.
func sanitizeText(value string) string {
	return strings.TrimSpace(textPolicy.Sanitize(value))
}

func sameUint(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
