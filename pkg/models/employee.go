package models

// EmployeeProfile is the normalized shape of one employee record in the
// workspace directory. The directory owns these records; this service
// treats a profile as an immutable snapshot for the duration of a request.
type EmployeeProfile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	EmployeeID       string   `json:"employeeId"`
	Department       string   `json:"department"`
	Role             string   `json:"role"`
	StartDate        string   `json:"startDate"`
	Location         string   `json:"location"`
	TimeZone         string   `json:"timeZone"`
	AgeRange         string   `json:"ageRange"`
	GenderIdentity   string   `json:"genderIdentity"`
	CulturalHeritage []string `json:"culturalHeritage"`
	Tags             []string `json:"tags,omitempty"`
}

// HasTag reports whether the profile carries the given directory tag.
func (p *EmployeeProfile) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// EmployeeInput carries the writable fields for creating or updating a
// directory record. Empty fields are skipped on update.
type EmployeeInput struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	EmployeeID       string   `json:"employeeId"`
	Department       string   `json:"department"`
	Role             string   `json:"role"`
	StartDate        string   `json:"startDate"`
	Location         string   `json:"location"`
	TimeZone         string   `json:"timeZone"`
	AgeRange         string   `json:"ageRange,omitempty"`
	GenderIdentity   string   `json:"genderIdentity,omitempty"`
	CulturalHeritage []string `json:"culturalHeritage,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}
