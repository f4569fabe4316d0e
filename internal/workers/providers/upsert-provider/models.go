// internal/workers/providers/upsert-provider/models.go
package upsertprovider

import "valyntra-workers/internal/models"

type Input struct {
	Provider models.Provider `json:"provider"`
}

type Output struct {
	ProviderID       string `json:"providerId"`
	Active           bool   `json:"active"`
	CacheInvalidated bool   `json:"cacheInvalidated"`
}
