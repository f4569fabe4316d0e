// internal/workers/providers/deactivate-provider/models.go
package deactivateprovider

type Input struct {
	ProviderID string `json:"providerId"`
}

type Output struct {
	ProviderID       string `json:"providerId"`
	Deactivated      bool   `json:"deactivated"`
	CacheInvalidated bool   `json:"cacheInvalidated"`
}
