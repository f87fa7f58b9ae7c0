package domain

type AvailabilityStatus string

const (
	AvailabilitySelling        AvailabilityStatus = "SELLING"
	AvailabilitySoldOut        AvailabilityStatus = "SOLD_OUT"
	AvailabilityCancelled      AvailabilityStatus = "CANCELLED"
	AvailabilityExpired        AvailabilityStatus = "EXPIRED"
	AvailabilityClosed         AvailabilityStatus = "CLOSED"
	AvailabilityPrivateSelling AvailabilityStatus = "PRIVATE_SELLING"
	AvailabilityPrivateSold    AvailabilityStatus = "PRIVATE_SOLD"
)

// Availability is one bookable slot under a rate.
type Availability struct {
	ID                string             `json:"availabilityId"`
	Status            AvailabilityStatus `json:"availabilityStatus"`
	Time              string             `json:"time,omitempty"`
	LocalTime         string             `json:"localTime,omitempty"`
	AvailableQuantity int                `json:"availableQuantity"`
}

// Selectable reports whether this slot may be picked for a booking. Every
// non-SELLING status is displayed but never selectable.
func (a Availability) Selectable() bool { return a.Status == AvailabilitySelling }

// DisplayTime prefers the slot's local time, falling back to the raw time.
func (a Availability) DisplayTime() string {
	if a.LocalTime != "" {
		return a.LocalTime
	}
	return a.Time
}

type RateTypePrice struct {
	ID               string `json:"id,omitempty"`
	RateType         string `json:"rateType"`
	RateTypeCategory string `json:"rateTypeCategory,omitempty"`
	RetailPrice      Money  `json:"retailPrice"`
}

// OpeningTimes bounds private-group starting times, inclusive, HH:MM.
type OpeningTimes struct {
	FromTime string `json:"fromTime"`
	ToTime   string `json:"toTime"`
}

// Rate is a priced, schedulable offering for an experience, including its
// availability calendar when fetched by id.
type Rate struct {
	ID              string          `json:"id"`
	RateName        string          `json:"rateName"`
	RateCode        string          `json:"rateCode,omitempty"`
	Description     string          `json:"description,omitempty"`
	ExperienceID    string          `json:"experienceId,omitempty"`
	RateTypesPrices []RateTypePrice `json:"rateTypesPrices,omitempty"`
	OpeningTimes    *OpeningTimes   `json:"openingTimes,omitempty"`
	AvailableDates  []Availability  `json:"availableDates,omitempty"`
	RateStatus      string          `json:"rateStatus,omitempty"`
	MaxParticipants int             `json:"maxParticipants,omitempty"`
	Private         bool            `json:"private,omitempty"`
}

// DefaultTravelerType is the tag attached to an availability selection:
// the rate's first price tier when it is a person tier, Adult otherwise.
func (r Rate) DefaultTravelerType() TravelerType {
	if len(r.RateTypesPrices) > 0 {
		switch t := TravelerType(r.RateTypesPrices[0].RateType); t {
		case TravelerAdult, TravelerChild, TravelerInfant:
			return t
		}
	}
	return TravelerAdult
}

// FindAvailability looks a slot up by id; nil when the rate has no such slot.
func (r Rate) FindAvailability(id string) *Availability {
	for i := range r.AvailableDates {
		if r.AvailableDates[i].ID == id {
			return &r.AvailableDates[i]
		}
	}
	return nil
}

type RatePage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Rate  `json:"results"`
}
