package style

// typeColors maps common FHIR resource types onto stable color tokens.
var typeColors = map[string]string{
	"Patient":            "#4e79a7",
	"Practitioner":       "#86bcb6",
	"Organization":       "#9c755f",
	"Encounter":          "#f28e2b",
	"Observation":        "#59a14f",
	"Condition":          "#e15759",
	"Procedure":          "#b07aa1",
	"MedicationRequest":  "#edc948",
	"Medication":         "#ff9da7",
	"DiagnosticReport":   "#76b7b2",
	"AllergyIntolerance": "#d37295",
	"Immunization":       "#8cd17d",
	"CarePlan":           "#499894",
	"Device":             "#79706e",
	"Location":           "#bab0ac",
}

// FallbackColor is used for resource types without a palette entry.
const FallbackColor = "#a0a0a8"

// ColorForType returns the color token for a resource type, with a
// defined fallback for unknown types.
func ColorForType(resourceType string) string {
	if c, ok := typeColors[resourceType]; ok {
		return c
	}
	return FallbackColor
}
