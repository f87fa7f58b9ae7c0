package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRateMismatch       = errors.New("availability does not belong to the selected rate")
	ErrNoRateSelected     = errors.New("no rate selected")
	ErrSlotNotSelling     = errors.New("availability is not selling")
	ErrUnknownSlot        = errors.New("unknown availability")
	ErrOutsideOpening     = errors.New("starting time outside the rate's opening times")
	ErrDraftNotSubmittable = errors.New("draft is not submittable")
)

// DateRange is the rate query window. A single picked date is a range of
// one day.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SelectedRate is the snapshot of the rate choice a draft needs to keep:
// enough to validate later steps without refetching.
type SelectedRate struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	OpeningTimes *OpeningTimes `json:"openingTimes,omitempty"`
	TravelerType TravelerType  `json:"travelerType"`
}

type SelectedAvailability struct {
	AvailabilityID string       `json:"availabilityId"`
	RateID         string       `json:"rateId"`
	RateType       TravelerType `json:"rateType"`
	LocalTime      string       `json:"localTime"`
}

type SelectedMeetingPoint struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
}

type Quantities struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (q Quantities) Total() int { return q.Adults + q.Children + q.Infants }

// BookingDraft is the ephemeral state of one booking flow. It lives in the
// draft store for the duration of the interaction and is discarded on
// submit or expiry. All transition rules live here, not in handlers.
type BookingDraft struct {
	ID           string                `json:"id"`
	ExperienceID string                `json:"experienceId"`
	Dates        *DateRange            `json:"dates,omitempty"`
	Rate         *SelectedRate         `json:"rate,omitempty"`
	Availability *SelectedAvailability `json:"availability,omitempty"`
	MeetingPoint *SelectedMeetingPoint `json:"meetingPoint,omitempty"`

	PrivateRequested bool   `json:"privateRequested"`
	StartingTime     string `json:"startingTime,omitempty"`

	Traveler   TravelerInformation `json:"traveler"`
	Quantities Quantities          `json:"quantities"`
	Notes      string              `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func NewBookingDraft(id, experienceID string) *BookingDraft {
	return &BookingDraft{
		ID:           id,
		ExperienceID: experienceID,
		Quantities:   Quantities{Adults: 1},
		CreatedAt:    time.Now().UTC(),
	}
}

// SetDates records the rate query window. A prior rate selection survives a
// date change; what rates are offered next is the caller's concern.
func (d *BookingDraft) SetDates(from, to string) {
	if from == "" {
		d.Dates = nil
		return
	}
	if to == "" {
		to = from
	}
	d.Dates = &DateRange{From: from, To: to}
}

// SelectRate pins a rate and always drops any previously selected
// availability, so a slot can never be submitted against a different rate.
func (d *BookingDraft) SelectRate(r Rate) {
	d.Rate = &SelectedRate{
		ID:           r.ID,
		Name:         r.RateName,
		OpeningTimes: r.OpeningTimes,
		TravelerType: r.DefaultTravelerType(),
	}
	d.Availability = nil
}

// SelectAvailability picks a slot from the currently selected rate's
// calendar. Only SELLING slots are selectable.
func (d *BookingDraft) SelectAvailability(r Rate, availabilityID string) error {
	if d.Rate == nil {
		return ErrNoRateSelected
	}
	if r.ID != d.Rate.ID {
		return ErrRateMismatch
	}
	slot := r.FindAvailability(availabilityID)
	if slot == nil {
		return ErrUnknownSlot
	}
	if !slot.Selectable() {
		return fmt.Errorf("%w: %s", ErrSlotNotSelling, slot.Status)
	}
	d.Availability = &SelectedAvailability{
		AvailabilityID: slot.ID,
		RateID:         r.ID,
		RateType:       d.Rate.TravelerType,
		LocalTime:      slot.DisplayTime(),
	}
	return nil
}

func (d *BookingDraft) SelectMeetingPoint(mp MeetingPoint) {
	d.MeetingPoint = &SelectedMeetingPoint{
		ID:          mp.ID,
		Type:        mp.Type,
		Address:     mp.Address,
		Description: mp.Description,
	}
}

// SetPrivateGroup toggles the private-group request. Switching it off
// clears the starting time. A non-empty starting time must fall inside the
// selected rate's opening window, inclusive at both ends.
func (d *BookingDraft) SetPrivateGroup(requested bool, startingTime string) error {
	if !requested {
		d.PrivateRequested = false
		d.StartingTime = ""
		return nil
	}
	if startingTime != "" && d.Rate != nil && d.Rate.OpeningTimes != nil {
		ok, err := withinOpening(startingTime, *d.Rate.OpeningTimes)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s not in [%s, %s]", ErrOutsideOpening,
				startingTime, d.Rate.OpeningTimes.FromTime, d.Rate.OpeningTimes.ToTime)
		}
	}
	d.PrivateRequested = true
	d.StartingTime = startingTime
	return nil
}

func withinOpening(t string, w OpeningTimes) (bool, error) {
	clock, err := parseClock(t)
	if err != nil {
		return false, err
	}
	from, err := parseClock(w.FromTime)
	if err != nil {
		return false, err
	}
	to, err := parseClock(w.ToTime)
	if err != nil {
		return false, err
	}
	return !clock.Before(from) && !clock.After(to), nil
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}

func (d *BookingDraft) SetTraveler(t TravelerInformation) { d.Traveler = t }

// SetQuantities clamps every field to a minimum of zero. There is no
// client-side maximum.
func (d *BookingDraft) SetQuantities(adults, children, infants int) {
	d.Quantities = Quantities{
		Adults:   max(0, adults),
		Children: max(0, children),
		Infants:  max(0, infants),
	}
}

func (d *BookingDraft) SetNotes(s string) { d.Notes = s }

// Problems returns the blocking validation messages that prevent
// submission. An empty slice means the draft is submittable.
func (d *BookingDraft) Problems(exp Experience) []string {
	var out []string
	if d.Availability == nil {
		out = append(out, "Please select an availability")
	}
	if !d.Traveler.Complete() {
		out = append(out, "Please fill in all required fields (First Name, Last Name, Email, Phone)")
	}
	if d.Quantities.Total() == 0 {
		out = append(out, "Please select at least one participant")
	}
	if exp.RequiresMeetingPoint() && d.MeetingPoint == nil {
		out = append(out, "Please select a meeting point")
	}
	if d.PrivateRequested && d.StartingTime == "" {
		out = append(out, "Please select a starting time for your private group")
	}
	return out
}

// OrderRequest assembles the create-order payload. ratesQuantity carries
// only traveler types with a positive count; meetingPoint appears only
// when one was selected; privateGroup.startingTime only when a private
// group was requested.
func (d *BookingDraft) OrderRequest(exp Experience, reseller Reseller, reference string) (OrderRequest, error) {
	if problems := d.Problems(exp); len(problems) > 0 {
		return OrderRequest{}, fmt.Errorf("%w: %s", ErrDraftNotSubmittable, problems[0])
	}

	var quantities []RateQuantity
	if d.Quantities.Adults > 0 {
		quantities = append(quantities, RateQuantity{RateType: TravelerAdult, Quantity: d.Quantities.Adults})
	}
	if d.Quantities.Children > 0 {
		quantities = append(quantities, RateQuantity{RateType: TravelerChild, Quantity: d.Quantities.Children})
	}
	if d.Quantities.Infants > 0 {
		quantities = append(quantities, RateQuantity{RateType: TravelerInfant, Quantity: d.Quantities.Infants})
	}

	booking := BookingRequest{
		AvailabilityID:        d.Availability.AvailabilityID,
		RateID:                d.Availability.RateID,
		RatesQuantity:         quantities,
		Reseller:              reseller,
		AdditionalInformation: map[string]string{},
		Notes:                 &Notes{FromTraveler: d.Notes},
		ResellerReference:     reference,
		PrivateGroup:          &PrivateGroup{PrivateRequested: d.PrivateRequested},
		TravelerInformation:   d.Traveler,
	}
	if d.MeetingPoint != nil {
		booking.MeetingPoint = &BookingMeetingPoint{
			Type:        d.MeetingPoint.Type,
			Address:     d.MeetingPoint.Address,
			Description: d.MeetingPoint.Description,
		}
	}
	if d.PrivateRequested && d.StartingTime != "" {
		booking.PrivateGroup.StartingTime = d.StartingTime
	}

	return OrderRequest{
		TravelerInformation: d.Traveler,
		Bookings:            []BookingRequest{booking},
	}, nil
}
