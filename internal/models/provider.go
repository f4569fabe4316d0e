package models

const (
	MinQualificationScore = 0
	MaxQualificationScore = 30

	// IndustryMultiIndustry marks a provider as serving every industry.
	IndustryMultiIndustry = "multi-industry"
)

// Provider is long-lived catalog data maintained outside the pipeline.
type Provider struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ProviderType       string    `json:"providerType,omitempty"`
	CapabilityTags     []string  `json:"capabilityTags"`
	IndustriesServed   []string  `json:"industriesServed"`
	DeliveryModel      string    `json:"deliveryModel,omitempty"`
	Size               SizeClass `json:"size"`
	Capacity           string    `json:"capacity,omitempty"`
	QualificationScore int       `json:"qualificationScore"`
	Website            string    `json:"website,omitempty"`
	Active             bool      `json:"active"`
}
