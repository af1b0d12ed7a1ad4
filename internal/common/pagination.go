package common

import "dinedash/internal/models"

// NormalizePage clamps raw paging input. A page below 1 becomes 1, a limit
// below 1 becomes defaultLimit and a limit above maxLimit becomes maxLimit.
func NormalizePage(page, limit, defaultLimit, maxLimit int) models.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return models.Page{Page: page, Limit: limit}
}
