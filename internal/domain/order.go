package domain

import "time"

type TravelerType string

const (
	TravelerAdult  TravelerType = "Adult"
	TravelerChild  TravelerType = "Child"
	TravelerInfant TravelerType = "Infant"
)

type TravelerInformation struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Complete reports whether all four contact fields are filled in.
func (t TravelerInformation) Complete() bool {
	return t.FirstName != "" && t.LastName != "" && t.Email != "" && t.Phone != ""
}

func (t TravelerInformation) FullName() string {
	return t.FirstName + " " + t.LastName
}

type RateQuantity struct {
	RateType TravelerType `json:"rateType"`
	Quantity int          `json:"quantity"`
}

type Reseller struct {
	Name      string `json:"name"`
	PartnerID string `json:"partnerId"`
}

type Notes struct {
	FromSeller    string `json:"fromSeller,omitempty"`
	FromTraveler  string `json:"fromTraveler,omitempty"`
	FromOrganizer string `json:"fromOrganizer,omitempty"`
}

type BookingMeetingPoint struct {
	Type        string `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
}

type PrivateGroup struct {
	PrivateRequested bool   `json:"privateRequested"`
	StartingTime     string `json:"startingTime,omitempty"`
}

// BookingRequest is one booking line inside a create/confirm order payload.
type BookingRequest struct {
	ID                    string               `json:"id,omitempty"`
	AvailabilityID        string               `json:"availabilityId"`
	RateID                string               `json:"rateId"`
	RatesQuantity         []RateQuantity       `json:"ratesQuantity"`
	Reseller              Reseller             `json:"reseller"`
	AdditionalInformation map[string]string    `json:"additionalInformation,omitempty"`
	Notes                 *Notes               `json:"notes,omitempty"`
	ResellerReference     string               `json:"resellerReference,omitempty"`
	MeetingPoint          *BookingMeetingPoint `json:"meetingPoint,omitempty"`
	PrivateGroup          *PrivateGroup        `json:"privateGroup,omitempty"`
	TravelerInformation   TravelerInformation  `json:"travelerInformation"`
}

type OrderRequest struct {
	TravelerInformation TravelerInformation `json:"travelerInformation"`
	Bookings            []BookingRequest    `json:"bookings"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderOnHold    OrderStatus = "ON_HOLD"
	OrderBooked    OrderStatus = "BOOKED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderCompleted OrderStatus = "COMPLETED"
)

type BookingStatus string

const (
	BookingOnHold    BookingStatus = "ON_HOLD"
	BookingPending   BookingStatus = "PENDING"
	BookingAccepted  BookingStatus = "ACCEPTED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
	BookingRejected  BookingStatus = "REJECTED"
)

type PriceBreakdownLine struct {
	RateType    TravelerType `json:"rateType"`
	Quantity    int          `json:"quantity"`
	RetailPrice Money        `json:"retailPrice"`
}

type BookingPrice struct {
	FinalRetailPrice     Money                `json:"finalRetailPrice"`
	NetRate              Money                `json:"netRate"`
	RetailPriceBreakdown []PriceBreakdownLine `json:"retailPriceBreakdown,omitempty"`
}

type Payment struct {
	ProcessedBy string `json:"processedBy,omitempty"`
	Status      string `json:"status,omitempty"`
	Code        string `json:"code,omitempty"`
}

type Cancellation struct {
	CancelledBy     string `json:"cancelledBy,omitempty"`
	CancelledAt     string `json:"cancelledAt,omitempty"`
	CancelledReason string `json:"cancelledReason,omitempty"`
}

// Booking is one reserved availability inside an order, as returned by the
// platform.
type Booking struct {
	ID                    string               `json:"id,omitempty"`
	AvailabilityID        string               `json:"availabilityId"`
	RateID                string               `json:"rateId"`
	RatesQuantity         []RateQuantity       `json:"ratesQuantity"`
	Reseller              Reseller             `json:"reseller"`
	TravelerInformation   TravelerInformation  `json:"travelerInformation"`
	AdditionalInformation map[string]string    `json:"additionalInformation,omitempty"`
	Notes                 *Notes               `json:"notes,omitempty"`
	ResellerReference     string               `json:"resellerReference,omitempty"`
	MeetingPoint          *BookingMeetingPoint `json:"meetingPoint,omitempty"`
	BookingStatus         BookingStatus        `json:"bookingStatus,omitempty"`
	BookingCreated        string               `json:"bookingCreated,omitempty"`
	BookingLastModified   string               `json:"bookingLastModified,omitempty"`
	LocalTime             string               `json:"localTime,omitempty"`
	Time                  string               `json:"time,omitempty"`
	PrivateGroup          bool                 `json:"privateGroup,omitempty"`
	Cancellation          *Cancellation        `json:"cancellation,omitempty"`
	Price                 *BookingPrice        `json:"price,omitempty"`
	Payment               *Payment             `json:"payment,omitempty"`
	Experience            *Experience          `json:"experience,omitempty"`
}

// Order is the upstream order entity. This process keeps no authoritative
// copy; everything here is a read-through view of the platform's state.
type Order struct {
	ID                  string              `json:"id"`
	Status              OrderStatus         `json:"status"`
	FinalPrice          *Money              `json:"finalPrice,omitempty"`
	ResellerReference   string              `json:"resellerReference,omitempty"`
	TravelerInformation TravelerInformation `json:"travelerInformation"`
	Bookings            []Booking           `json:"bookings"`
}

// CanConfirm: the whole order is confirmable only while pending or on hold.
func (o Order) CanConfirm() bool {
	return o.Status == OrderPending || o.Status == OrderOnHold
}

// CanRemoveBookings: individual bookings may be expired until the order is
// booked or completed.
func (o Order) CanRemoveBookings() bool {
	return o.Status != OrderBooked && o.Status != OrderCompleted
}

// ConfirmRequest reconstructs the create-order payload from the order's
// current bookings, preserving booking ids so the platform can match them.
func (o Order) ConfirmRequest() OrderRequest {
	req := OrderRequest{TravelerInformation: o.TravelerInformation}
	for _, b := range o.Bookings {
		add := b.AdditionalInformation
		if add == nil {
			add = map[string]string{}
		}
		req.Bookings = append(req.Bookings, BookingRequest{
			ID:                    b.ID,
			AvailabilityID:        b.AvailabilityID,
			RateID:                b.RateID,
			RatesQuantity:         b.RatesQuantity,
			Reseller:              b.Reseller,
			TravelerInformation:   b.TravelerInformation,
			AdditionalInformation: add,
			Notes:                 b.Notes,
			ResellerReference:     b.ResellerReference,
			MeetingPoint:          b.MeetingPoint,
		})
	}
	return req
}

// ExperienceName returns the first booking's experience name, for display
// and for the local order index.
func (o Order) ExperienceName() string {
	for _, b := range o.Bookings {
		if b.Experience != nil && b.Experience.Name != "" {
			return b.Experience.Name
		}
	}
	return ""
}

// OrderRef is the reseller-side index row for an order this process placed.
// A convenience listing only; the platform stays the source of truth.
type OrderRef struct {
	ID             string
	Status         OrderStatus
	ExperienceName string
	TravelerName   string
	TravelerEmail  string
	TotalAmount    *float64
	Currency       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrderRef maps a fetched order onto its index row.
func NewOrderRef(o Order) OrderRef {
	ref := OrderRef{
		ID:             o.ID,
		Status:         o.Status,
		ExperienceName: o.ExperienceName(),
		TravelerName:   o.TravelerInformation.FullName(),
		TravelerEmail:  o.TravelerInformation.Email,
	}
	if o.FinalPrice != nil {
		amount, currency := o.FinalPrice.Amount, o.FinalPrice.Currency
		ref.TotalAmount = &amount
		ref.Currency = &currency
	}
	return ref
}
