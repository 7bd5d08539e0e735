package models

// ConnectionType tags one way a new hire relates to an existing employee.
// The vocabulary is closed: values outside this set are dropped when they
// come back from the generation provider.
type ConnectionType string

const (
	ConnectionSameTeam         ConnectionType = "same_team"
	ConnectionSameDepartment   ConnectionType = "same_department"
	ConnectionSameLocation     ConnectionType = "same_location"
	ConnectionSameRole         ConnectionType = "same_role"
	ConnectionCulturalHeritage ConnectionType = "cultural_heritage"
	ConnectionSharedInterests  ConnectionType = "shared_interests"
	ConnectionLanguageMatch    ConnectionType = "language_match"
	ConnectionPotentialMentor  ConnectionType = "potential_mentor"
	ConnectionRecentHire       ConnectionType = "recent_hire"
	ConnectionCrossFunctional  ConnectionType = "cross_functional"
	ConnectionTimezoneOverlap  ConnectionType = "timezone_overlap"
	ConnectionExecutivePeer    ConnectionType = "executive_peer"
	ConnectionLeadershipMentor ConnectionType = "leadership_mentor"
	ConnectionPeerLevel        ConnectionType = "peer_level"
)

var validConnectionTypes = map[ConnectionType]struct{}{
	ConnectionSameTeam:         {},
	ConnectionSameDepartment:   {},
	ConnectionSameLocation:     {},
	ConnectionSameRole:         {},
	ConnectionCulturalHeritage: {},
	ConnectionSharedInterests:  {},
	ConnectionLanguageMatch:    {},
	ConnectionPotentialMentor:  {},
	ConnectionRecentHire:       {},
	ConnectionCrossFunctional:  {},
	ConnectionTimezoneOverlap:  {},
	ConnectionExecutivePeer:    {},
	ConnectionLeadershipMentor: {},
	ConnectionPeerLevel:        {},
}

// IsValid reports whether t is part of the closed connection vocabulary.
func (t ConnectionType) IsValid() bool {
	_, ok := validConnectionTypes[t]
	return ok
}

// FilterConnectionTypes drops values outside the closed vocabulary,
// preserving order.
func FilterConnectionTypes(types []ConnectionType) []ConnectionType {
	out := make([]ConnectionType, 0, len(types))
	for _, t := range types {
		if t.IsValid() {
			out = append(out, t)
		}
	}
	return out
}

// EmployeeRelationship is one scored connection between the new hire and
// an existing employee. Derived per request; never persisted.
type EmployeeRelationship struct {
	EmployeeID         string           `json:"employeeId"`
	EmployeeName       string           `json:"employeeName"`
	ConnectionTypes    []ConnectionType `json:"connectionTypes"`
	RelevanceScore     float64          `json:"relevanceScore"`
	Reasoning          string           `json:"reasoning"`
	ActionableInsights []string         `json:"actionableInsights"`
}

// AnalysisSource tags how a RelationshipAnalysis was produced.
type AnalysisSource string

const (
	// AnalysisSourceGenerated means the generation provider produced and
	// validated the analysis.
	AnalysisSourceGenerated AnalysisSource = "generated"
	// AnalysisSourceFallback means generation failed and the analysis was
	// assembled from rule-based direct connections only.
	AnalysisSourceFallback AnalysisSource = "fallback"
)

// RelationshipAnalysis is the full result of analyzing a new hire against
// the existing employee population.
type RelationshipAnalysis struct {
	NewEmployeeID             string                  `json:"newEmployeeId"`
	Relationships             []*EmployeeRelationship `json:"relationships"`
	KeyInsights               []string                `json:"keyInsights"`
	OnboardingRecommendations []string                `json:"onboardingRecommendations"`
	Source                    AnalysisSource          `json:"source"`
}
