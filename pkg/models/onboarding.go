package models

// OnboardingEmployee is the employee payload posted to the onboarding
// endpoints. It is echoed back in the generated flow.
type OnboardingEmployee struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	StartDate  string `json:"startDate,omitempty"`
	Email      string `json:"email,omitempty"`
}

// OnboardingPerson is someone the new hire should meet.
type OnboardingPerson struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Department     string `json:"department"`
	Email          string `json:"email"`
	ConnectionType string `json:"connectionType"` // direct | indirect
	Reasoning      string `json:"reasoning,omitempty"`
}

// OnboardingProcess is documentation or a process to review.
type OnboardingProcess struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"` // notion | web | internal
	URL         string `json:"url"`
	Category    string `json:"category"`
}

// OnboardingTraining is a training item for the new hire.
type OnboardingTraining struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	Duration    string `json:"duration"`
	Source      string `json:"source"` // youtube | internal
}

// OnboardingAccess is a system-access item to provision.
type OnboardingAccess struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`   // pending | completed
	Priority    string `json:"priority"` // high | medium | low
}

// OnboardingFlow is the structured onboarding plan.
type OnboardingFlow struct {
	People    []OnboardingPerson   `json:"people"`
	Processes []OnboardingProcess  `json:"processes"`
	Training  []OnboardingTraining `json:"training"`
	Access    []OnboardingAccess   `json:"access"`
}

// FlowSource tags whether an onboarding flow came from the generation
// provider or from the static fallback payload.
type FlowSource string

const (
	FlowSourceGenerated FlowSource = "generated"
	FlowSourceFallback  FlowSource = "fallback"
)

// OnboardingFlowResult is the onboarding plan plus the employee it was
// generated for and the path that produced it. Generation failure is not
// an error: callers always get a usable flow.
type OnboardingFlowResult struct {
	Employee *OnboardingEmployee `json:"employee"`
	OnboardingFlow
	Source FlowSource `json:"source"`
}
