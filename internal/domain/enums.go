package domain

// ProcessingStatus represents the lifecycle of a document analysis run.
type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// ClauseType tags a clause with its dominant legal concern.
type ClauseType string

const (
	ClauseTypePayment              ClauseType = "payment"
	ClauseTypeTermination          ClauseType = "termination"
	ClauseTypeLiability            ClauseType = "liability"
	ClauseTypeConfidentiality      ClauseType = "confidentiality"
	ClauseTypeGoverningLaw         ClauseType = "governing_law"
	ClauseTypeForceMajeure         ClauseType = "force_majeure"
	ClauseTypeIntellectualProperty ClauseType = "intellectual_property"
	ClauseTypeMaintenance          ClauseType = "maintenance"
	ClauseTypeSecurityDeposit      ClauseType = "security_deposit"
	ClauseTypeNotice               ClauseType = "notice"
	ClauseTypeAssignment           ClauseType = "assignment"
	ClauseTypeAmendment            ClauseType = "amendment"
	ClauseTypeSeverability         ClauseType = "severability"
	ClauseTypeWaiver               ClauseType = "waiver"
	ClauseTypeInsurance            ClauseType = "insurance"
	ClauseTypePropertyDetails      ClauseType = "property_details"
	ClauseTypePartyDetails         ClauseType = "party_details"
	ClauseTypeGeneral              ClauseType = "general"
)

// AnalysisSource records how an AnalysisResult was produced.
type AnalysisSource string

const (
	SourceModel    AnalysisSource = "model"    // full schema-valid provider output
	SourcePartial  AnalysisSource = "partial"  // field-level recovery from malformed output
	SourceFallback AnalysisSource = "fallback" // keyword heuristic, no provider output
)

// SeverityColors maps severity levels to UI hex colors.
var SeverityColors = map[int]string{
	1: "#22C55E",
	2: "#84CC16",
	3: "#EAB308",
	4: "#F97316",
	5: "#EF4444",
}

// SeverityLabels maps severity levels to human descriptions.
var SeverityLabels = map[int]string{
	1: "Informational - Standard boilerplate",
	2: "Low Risk - Minor implications",
	3: "Moderate - Review recommended",
	4: "High Risk - Legal review required",
	5: "Critical - Immediate attention required",
}

// SeverityColor returns the color for a severity level, defaulting to the
// moderate yellow for out-of-range values.
func SeverityColor(level int) string {
	if c, ok := SeverityColors[level]; ok {
		return c
	}
	return SeverityColors[3]
}
