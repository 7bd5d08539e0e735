package models

// GiftStatus is the approval status of a gift selection.
// Values are literal wire strings; the mixed casing is part of the
// persisted contract and must not be normalized.
type GiftStatus string

const (
	GiftStatusTBD       GiftStatus = "TBD"
	GiftStatusAccepted  GiftStatus = "Accepted"
	GiftStatusDenied    GiftStatus = "Denied"
	GiftStatusPurchased GiftStatus = "purchased"
	GiftStatusDelivered GiftStatus = "delivered"
)

// IsUpdatable reports whether s is a status that an update operation may
// set. Records are created as TBD; TBD itself is never a valid target.
// No transition graph is enforced beyond this.
func (s GiftStatus) IsUpdatable() bool {
	switch s {
	case GiftStatusAccepted, GiftStatusDenied, GiftStatusPurchased, GiftStatusDelivered:
		return true
	}
	return false
}

// PriceRange bounds a gift's price when no exact price is known.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GiftProvenance records which recommendation signals produced a gift,
// plus the provider's opaque explainability payload.
type GiftProvenance struct {
	Signals        []string `json:"signals"`
	Explainability any      `json:"explainability,omitempty"`
}

// GiftRecord is one persisted gift selection. SelectedAt and
// StatusUpdatedAt are fixed-width ISO-8601 UTC strings (GiftTimeLayout)
// so that date-range comparisons can be done lexicographically.
type GiftRecord struct {
	ID             string      `json:"id"`
	GiftID         string      `json:"giftId"`
	GiftName       string      `json:"giftName"`
	GiftCategory   string      `json:"giftCategory"`
	GiftPrice      *float64    `json:"giftPrice,omitempty"`
	GiftPriceRange *PriceRange `json:"giftPriceRange,omitempty"`
	GiftImage      string      `json:"giftImage,omitempty"`
	GiftURL        string      `json:"giftUrl,omitempty"`
	AffinityScore  *float64    `json:"affinityScore,omitempty"`

	SelectedBy      string `json:"selectedBy"`
	SelectedByName  string `json:"selectedByName"`
	SelectedFor     string `json:"selectedFor"`
	SelectedForName string `json:"selectedForName"`
	SelectedAt      string `json:"selectedAt"`
	Occasion        string `json:"occasion,omitempty"`
	Notes           string `json:"notes,omitempty"`

	Sources *GiftProvenance `json:"qlooSources,omitempty"`

	Status          GiftStatus `json:"status"`
	StatusUpdatedAt string     `json:"statusUpdatedAt,omitempty"`
	StatusUpdatedBy string     `json:"statusUpdatedBy,omitempty"`
}

// GiftDescriptor describes the gift being selected, as provided by the
// recommendation provider or the caller.
type GiftDescriptor struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Price         *float64    `json:"price,omitempty"`
	PriceRange    *PriceRange `json:"priceRange,omitempty"`
	Image         string      `json:"image,omitempty"`
	URL           string      `json:"url,omitempty"`
	AffinityScore *float64    `json:"affinityScore,omitempty"`
}

// Identity is an id plus display name pair for givers and recipients.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GiftSelectionInput is the input to storing a new gift selection.
type GiftSelectionInput struct {
	Gift        GiftDescriptor  `json:"gift"`
	SelectedBy  Identity        `json:"selectedBy"`
	SelectedFor Identity        `json:"selectedFor"`
	Occasion    string          `json:"occasion,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Sources     *GiftProvenance `json:"qlooSources,omitempty"`
}

// GiftStats aggregates counts over all live gift records.
type GiftStats struct {
	TotalGifts     int `json:"totalGifts"`
	SelectedCount  int `json:"selectedCount"`
	PurchasedCount int `json:"purchasedCount"`
	DeliveredCount int `json:"deliveredCount"`
}

// GiftSearchCriteria filters gift records. Zero values mean "no filter".
// StartDate and EndDate are compared against SelectedAt as strings, which
// is chronological as long as both sides use the same fixed-width format.
type GiftSearchCriteria struct {
	GiverID     string
	RecipientID string
	StartDate   string
	EndDate     string
	Status      GiftStatus
	Occasion    string
}
