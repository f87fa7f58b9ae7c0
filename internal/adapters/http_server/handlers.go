package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"experiences_portal/internal/adapters/turneo"
	"experiences_portal/internal/app"
	"experiences_portal/internal/domain"
	"experiences_portal/internal/shared"
)

const (
	draftCookie = "booking_draft"
	flashCookie = "portal_flash"

	placedOrdersLimit = 100
)

type Handlers struct {
	Catalog *app.CatalogService
	Orders  *app.OrderService
	Drafts  *app.DraftService
	Cfg     shared.Config
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.listExperiences)
	s.mux.Route("/experiences/{id}", func(r chi.Router) {
		r.Get("/", h.showExperience)
		r.Route("/booking", func(r chi.Router) {
			r.Post("/dates", h.bookingDates)
			r.Post("/rate", h.bookingRate)
			r.Post("/availability", h.bookingAvailability)
			r.Post("/meeting-point", h.bookingMeetingPoint)
			r.Post("/private-group", h.bookingPrivateGroup)
			r.Post("/details", h.bookingDetails)
			r.Post("/submit", h.bookingSubmit)
		})
	})
	s.mux.Get("/orders", h.listOrders)
	s.mux.Route("/orders/{id}", func(r chi.Router) {
		r.Get("/", h.showOrder)
		r.Post("/refresh", h.refreshOrder)
		r.Post("/remove", h.removeBookings)
		r.Post("/confirm", h.confirmOrder)
	})
}

// ---- view models ----

type experiencesView struct {
	Items      []domain.Experience
	Pagination app.Pagination
}

type bookingView struct {
	Draft    *domain.BookingDraft
	Rates    []domain.Rate
	Rate     *domain.Rate
	Problems []string
}

type experienceView struct {
	Exp     domain.Experience
	Booking *bookingView
	Flash   *flashMsg
}

type orderView struct {
	Order domain.Order
	Flash *flashMsg
}

type ordersView struct{ Orders []domain.OrderRef }

type errorView struct{ Title, Message string }

// ---- flash messages ----

type flashMsg struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// setFlash stores a one-shot banner in a cookie. Its lifetime is the
// configured banner duration, so a stale one never greets a later visit.
func (h *Handlers) setFlash(w http.ResponseWriter, kind, message string) {
	raw, _ := json.Marshal(flashMsg{Kind: kind, Message: message})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   int(h.Cfg.SuccessBanner / time.Second),
		HttpOnly: true,
	})
}

func (h *Handlers) popFlash(w http.ResponseWriter, r *http.Request) *flashMsg {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f flashMsg
	if json.Unmarshal(raw, &f) != nil {
		return nil
	}
	return &f
}

// ---- listing ----

func (h *Handlers) listExperiences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		page domain.ExperiencePage
		err  error
		num  = formInt(r.URL.Query().Get("page"), 1)
	)
	if r.URL.Query().Get("refresh") == "1" {
		num = 1
		page, err = h.Catalog.RefreshExperiences(ctx)
	} else {
		page, err = h.Catalog.Experiences(ctx, num)
	}
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}

	render(w, http.StatusOK, "experiences", experiencesView{
		Items:      page.Results,
		Pagination: app.NewPagination(num, page.Count, h.Cfg.PageSize, h.Cfg.MaxVisiblePages),
	})
}

// ---- detail and booking panel ----

func (h *Handlers) showExperience(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	exp, err := h.Catalog.Experience(ctx, id)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}

	view := experienceView{Exp: exp, Flash: h.popFlash(w, r)}
	if r.URL.Query().Get("book") == "1" {
		draft, err := h.ensureDraft(ctx, w, r, id)
		if err != nil {
			h.renderRemoteError(w, err)
			return
		}
		booking, err := h.bookingPanel(ctx, exp, draft)
		if err != nil {
			h.renderRemoteError(w, err)
			return
		}
		view.Booking = booking
	}
	render(w, http.StatusOK, "experience", view)
}

// ensureDraft resumes the cookie's draft for this experience, or starts a
// fresh one. A cookie pointing at another experience's draft (or an
// expired one) starts over.
func (h *Handlers) ensureDraft(ctx context.Context, w http.ResponseWriter, r *http.Request, experienceID string) (*domain.BookingDraft, error) {
	if c, err := r.Cookie(draftCookie); err == nil {
		d, err := h.Drafts.Get(ctx, c.Value, experienceID)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, app.ErrDraftNotFound) {
			return nil, err
		}
	}
	d, err := h.Drafts.Create(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     draftCookie,
		Value:    d.ID,
		Path:     "/",
		MaxAge:   int(h.Cfg.DraftTTL / time.Second),
		HttpOnly: true,
	})
	return d, nil
}

// bookingPanel gathers what the panel shows for the draft's current step:
// the rate list for the chosen window and the selected rate's availability
// calendar, fetched concurrently.
func (h *Handlers) bookingPanel(ctx context.Context, exp domain.Experience, d *domain.BookingDraft) (*bookingView, error) {
	v := &bookingView{Draft: d}
	g, gctx := errgroup.WithContext(ctx)
	if d.Dates != nil {
		g.Go(func() error {
			rp, err := h.Catalog.Rates(gctx, exp.ID, d.Dates.From, d.Dates.To, 1)
			if err != nil {
				return err
			}
			v.Rates = rp.Results
			return nil
		})
	}
	if d.Rate != nil {
		g.Go(func() error {
			rate, err := h.Catalog.Rate(gctx, exp.ID, d.Rate.ID)
			if err != nil {
				return err
			}
			v.Rate = &rate
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return v, nil
}

// loadDraft is the booking-step precondition: no live draft means the flow
// restarts at the panel.
func (h *Handlers) loadDraft(w http.ResponseWriter, r *http.Request, experienceID string) (*domain.BookingDraft, bool) {
	c, err := r.Cookie(draftCookie)
	if err != nil {
		h.redirectBooking(w, r, experienceID)
		return nil, false
	}
	d, err := h.Drafts.Get(r.Context(), c.Value, experienceID)
	if err != nil {
		h.redirectBooking(w, r, experienceID)
		return nil, false
	}
	return d, true
}

func (h *Handlers) redirectBooking(w http.ResponseWriter, r *http.Request, experienceID string) {
	http.Redirect(w, r, "/experiences/"+experienceID+"?book=1", http.StatusSeeOther)
}

// applyStep runs one draft transition and goes back to the panel. A
// transition rejection becomes a banner, not an error page.
func (h *Handlers) applyStep(w http.ResponseWriter, r *http.Request, experienceID, draftID string, apply func(*domain.BookingDraft) error) {
	if _, err := h.Drafts.Update(r.Context(), draftID, experienceID, apply); err != nil {
		if errors.Is(err, app.ErrDraftNotFound) {
			h.redirectBooking(w, r, experienceID)
			return
		}
		h.setFlash(w, "error", err.Error())
	}
	h.redirectBooking(w, r, experienceID)
}

func (h *Handlers) bookingDates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	from, until := r.FormValue("from"), r.FormValue("until")
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		d.SetDates(from, until)
		return nil
	})
}

func (h *Handlers) bookingRate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	rate, err := h.Catalog.Rate(r.Context(), id, r.FormValue("rate"))
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		d.SelectRate(rate)
		return nil
	})
}

func (h *Handlers) bookingAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	if d.Rate == nil {
		h.setFlash(w, "error", "Please select a rate first")
		h.redirectBooking(w, r, id)
		return
	}
	rate, err := h.Catalog.Rate(r.Context(), id, d.Rate.ID)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	slotID := r.FormValue("availability")
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		return d.SelectAvailability(rate, slotID)
	})
}

func (h *Handlers) bookingMeetingPoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	exp, err := h.Catalog.Experience(r.Context(), id)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	var chosen *domain.MeetingPoint
	for i := range exp.MeetingPoints {
		if exp.MeetingPoints[i].ID == r.FormValue("meetingPoint") {
			chosen = &exp.MeetingPoints[i]
			break
		}
	}
	if chosen == nil {
		h.setFlash(w, "error", "Unknown meeting point")
		h.redirectBooking(w, r, id)
		return
	}
	mp := *chosen
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		d.SelectMeetingPoint(mp)
		return nil
	})
}

func (h *Handlers) bookingPrivateGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	requested := r.FormValue("private") == "1"
	startingTime := r.FormValue("startingTime")
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		return d.SetPrivateGroup(requested, startingTime)
	})
}

func (h *Handlers) bookingDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	traveler := domain.TravelerInformation{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Email:     r.FormValue("email"),
		Phone:     r.FormValue("phone"),
	}
	adults := formInt(r.FormValue("adults"), 0)
	children := formInt(r.FormValue("children"), 0)
	infants := formInt(r.FormValue("infants"), 0)
	notes := r.FormValue("notes")
	h.applyStep(w, r, id, d.ID, func(d *domain.BookingDraft) error {
		d.SetTraveler(traveler)
		d.SetQuantities(adults, children, infants)
		d.SetNotes(notes)
		return nil
	})
}

func (h *Handlers) bookingSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	d, ok := h.loadDraft(w, r, id)
	if !ok {
		return
	}
	exp, err := h.Catalog.Experience(ctx, id)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}

	// A blocked draft re-renders the panel with the reasons; nothing is
	// sent upstream.
	if problems := d.Problems(exp); len(problems) > 0 {
		booking, err := h.bookingPanel(ctx, exp, d)
		if err != nil {
			h.renderRemoteError(w, err)
			return
		}
		booking.Problems = problems
		render(w, http.StatusUnprocessableEntity, "experience", experienceView{Exp: exp, Booking: booking})
		return
	}

	reseller := domain.Reseller{Name: h.Cfg.ResellerName, PartnerID: h.Cfg.PartnerID}
	req, err := d.OrderRequest(exp, reseller, uuid.NewString())
	if err != nil {
		h.setFlash(w, "error", err.Error())
		h.redirectBooking(w, r, id)
		return
	}
	order, err := h.Orders.Create(ctx, req)
	if err != nil {
		// The platform rejected the order: keep the panel and the draft,
		// surface the rejection as a banner.
		var ae *turneo.APIError
		if errors.As(err, &ae) {
			h.setFlash(w, "error", ae.Error())
			h.redirectBooking(w, r, id)
			return
		}
		h.renderRemoteError(w, err)
		return
	}

	_ = h.Drafts.Discard(ctx, d.ID)
	http.SetCookie(w, &http.Cookie{Name: draftCookie, Path: "/", MaxAge: -1})
	h.setFlash(w, "success", "Your booking was placed.")
	http.Redirect(w, r, "/orders/"+order.ID, http.StatusSeeOther)
}

// ---- orders ----

func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Orders.Placed(r.Context(), placedOrdersLimit)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	render(w, http.StatusOK, "orders", ordersView{Orders: refs})
}

func (h *Handlers) showOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	render(w, http.StatusOK, "order", orderView{Order: order, Flash: h.popFlash(w, r)})
}

func (h *Handlers) refreshOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Orders.Refresh(r.Context(), id); err != nil {
		h.renderRemoteError(w, err)
		return
	}
	h.setFlash(w, "success", "Order refreshed.")
	http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
}

func (h *Handlers) removeBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	order, err := h.Orders.Get(ctx, id)
	if err != nil {
		h.renderRemoteError(w, err)
		return
	}
	if !order.CanRemoveBookings() {
		h.setFlash(w, "error", "Bookings can no longer be removed from this order.")
		http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if _, err := h.Orders.RemoveBookings(ctx, id, r.Form["booking"]); err != nil {
		h.renderRemoteError(w, err)
		return
	}
	h.setFlash(w, "success", "Booking removed.")
	http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
}

func (h *Handlers) confirmOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Orders.Confirm(r.Context(), id); err != nil {
		var ae *turneo.APIError
		if !errors.As(err, &ae) {
			// Local gate (status not confirmable), shown in place.
			h.setFlash(w, "error", err.Error())
			http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
			return
		}
		h.renderRemoteError(w, err)
		return
	}
	h.setFlash(w, "success", "Order confirmed.")
	http.Redirect(w, r, "/orders/"+id, http.StatusSeeOther)
}

// ---- helpers ----

func formInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// renderRemoteError turns a platform failure into an error page. Upstream
// validation messages are preserved so the visitor sees what the platform
// rejected.
func (h *Handlers) renderRemoteError(w http.ResponseWriter, err error) {
	var ae *turneo.APIError
	switch {
	case turneo.IsNotFound(err):
		render(w, http.StatusNotFound, "error", errorView{
			Title:   "Not found",
			Message: "That page does not exist, or the item is no longer available.",
		})
	case errors.As(err, &ae) && ae.StatusCode != 0:
		render(w, http.StatusBadGateway, "error", errorView{
			Title:   "The booking platform rejected the request",
			Message: ae.Error(),
		})
	default:
		render(w, http.StatusBadGateway, "error", errorView{
			Title:   "Something went wrong",
			Message: "The booking platform could not be reached. Please try again shortly.",
		})
	}
}
