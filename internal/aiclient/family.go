package aiclient

import "strings"

// ModelFamily distinguishes reasoning models (which reject temperature
// overrides and forced JSON response formats) from standard models.
type ModelFamily string

const (
	ModelFamilyStandard  ModelFamily = "standard"
	ModelFamilyReasoning ModelFamily = "reasoning"
)

// reasoningPrefixes is the fallback detection list. Prefix matching is
// brittle by nature; the model_family configuration override should be
// preferred whenever the deployment knows better than a name guess.
var reasoningPrefixes = []string{"gpt-5", "o1", "o3"}

// DetectModelFamily infers a model's family from its id by prefix match.
// Callers that have an explicit MODEL_FAMILY configuration value should
// use that instead and only fall back to this for unconfigured models.
func DetectModelFamily(modelID string) ModelFamily {
	lower := strings.ToLower(modelID)
	for _, prefix := range reasoningPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ModelFamilyReasoning
		}
	}
	return ModelFamilyStandard
}

// ResolveModelFamily returns override if it is a valid family, else falls
// back to prefix detection against modelID.
func ResolveModelFamily(modelID string, override ModelFamily) ModelFamily {
	if override == ModelFamilyReasoning || override == ModelFamilyStandard {
		return override
	}
	return DetectModelFamily(modelID)
}
