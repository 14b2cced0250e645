package llmprovider

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderBedrock is the AWS Bedrock runtime text-completion API
	ProviderBedrock ProviderID = "bedrock"

	// ProviderAnthropic is Anthropic's Messages API (direct or through Bedrock)
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderBedrock, ProviderAnthropic, ProviderLorem:
		return true
	default:
		return false
	}
}
