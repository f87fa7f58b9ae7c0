package domain

// Experience is an upstream catalog entity. Read-only from this
// application's point of view; the JSON tags mirror the platform's wire
// shape so payloads decode straight into domain values.
type Experience struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Highlight     string         `json:"highlight,omitempty"`
	Duration      string         `json:"duration,omitempty"`
	Images        []Image        `json:"images,omitempty"`
	Location      *Location      `json:"location,omitempty"`
	MinPrice      *Money         `json:"minPrice,omitempty"`
	MaxPrice      *Money         `json:"maxPrice,omitempty"`
	MeetingPoints []MeetingPoint `json:"meetingPoints,omitempty"`
	Included      []NamedItem    `json:"included,omitempty"`
	Excluded      []NamedItem    `json:"excluded,omitempty"`
	Categories    *Categories    `json:"categories,omitempty"`
	Tags          *Tags          `json:"tags,omitempty"`
	BookingType   string         `json:"bookingType,omitempty"`
	Status        string         `json:"status,omitempty"`
}

// RequiresMeetingPoint reports whether a booking against this experience
// must carry a meeting point selection.
func (e Experience) RequiresMeetingPoint() bool { return len(e.MeetingPoints) > 0 }

// PrivateBookable reports whether the private-group option may be offered.
// Only an explicit "NO" tag hides it.
func (e Experience) PrivateBookable() bool {
	return e.Tags == nil || e.Tags.Private != "NO"
}

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Image struct {
	URLHigh string `json:"urlHigh"`
	URLLow  string `json:"urlLow,omitempty"`
	AltText string `json:"altText,omitempty"`
}

type Location struct {
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

type MeetingPoint struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Title           string  `json:"title,omitempty"`
	City            string  `json:"city,omitempty"`
	Country         string  `json:"country,omitempty"`
	Address         string  `json:"address,omitempty"`
	Description     string  `json:"description,omitempty"`
	Latitude        float64 `json:"latitude,omitempty"`
	Longitude       float64 `json:"longitude,omitempty"`
	TimeBeforeStart int     `json:"timeBeforeStart,omitempty"`
}

type NamedItem struct {
	Name string `json:"name"`
}

type Categories struct {
	Type         string `json:"type,omitempty"`
	Budget       string `json:"budget,omitempty"`
	AttendeeType string `json:"attendeeType,omitempty"`
	LocationType string `json:"locationType,omitempty"`
}

// Tags carries the catalog flags this application cares about. Private is
// a tri-state string upstream (YES / NO / ON_REQUEST), not a boolean.
type Tags struct {
	Popular         bool   `json:"popular,omitempty"`
	Private         string `json:"private,omitempty"`
	Exclusive       bool   `json:"exclusive,omitempty"`
	LikelyToSellOut bool   `json:"likelyToSellOut,omitempty"`
}

// ExperiencePage is the upstream's count/next/previous/results envelope.
type ExperiencePage struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []Experience `json:"results"`
}
