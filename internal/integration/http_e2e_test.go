//go:build integration || !unit

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	server "experiences_portal/internal/adapters/http_server"
	redisad "experiences_portal/internal/adapters/redis"
	"experiences_portal/internal/adapters/turneo"
	"experiences_portal/internal/app"
	"experiences_portal/internal/domain"
	"experiences_portal/internal/shared"
)

// fakeTurneo is a stateful stand-in for the platform: canned catalog,
// real order lifecycle.
type fakeTurneo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func (f *fakeTurneo) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}

	exp := domain.Experience{
		ID:          "exp-1",
		Name:        "Douro Valley Wine Tour",
		Description: "A day among the terraced vineyards.",
	}
	rate := domain.Rate{
		ID:       "rate-1",
		RateName: "Full day",
		RateTypesPrices: []domain.RateTypePrice{
			{RateType: "Adult", RetailPrice: domain.Money{Amount: 95, Currency: "EUR"}},
		},
		AvailableDates: []domain.Availability{
			{ID: "av-1", Status: domain.AvailabilitySelling, LocalTime: "2026-09-10T08:30", AvailableQuantity: 12},
		},
	}

	mux.HandleFunc("GET /experiences", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, domain.ExperiencePage{Count: 1, Results: []domain.Experience{exp}})
	})
	mux.HandleFunc("GET /experiences/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != exp.ID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// The data-wrapped shape, which the client must unwrap.
		writeJSON(w, map[string]any{"data": exp})
	})
	mux.HandleFunc("GET /experiences/{id}/rates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, domain.RatePage{Count: 1, Results: []domain.Rate{rate}})
	})
	mux.HandleFunc("GET /experiences/{id}/rates/{rateID}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("rateID") != rate.ID {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, rate)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req domain.OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		o := domain.Order{
			ID:                  "ord-1",
			Status:              domain.OrderPending,
			TravelerInformation: req.TravelerInformation,
		}
		for _, b := range req.Bookings {
			o.Bookings = append(o.Bookings, domain.Booking{
				ID:             "b1",
				AvailabilityID: b.AvailabilityID,
				RateID:         b.RateID,
				RatesQuantity:  b.RatesQuantity,
				BookingStatus:  domain.BookingPending,
				Experience:     &exp,
			})
		}
		// A second booking line so the remove step leaves a remainder.
		o.Bookings = append(o.Bookings, domain.Booking{
			ID:             "b2",
			AvailabilityID: "av-1",
			RateID:         rate.ID,
			RatesQuantity:  []domain.RateQuantity{{RateType: domain.TravelerAdult, Quantity: 2}},
			BookingStatus:  domain.BookingPending,
			Experience:     &exp,
		})
		f.orders[o.ID] = o
		writeJSON(w, o)
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		o, ok := f.orders[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, o)
	})
	mux.HandleFunc("POST /orders/{id}/remove", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ExpireBookings []string `json:"expireBookings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		o := f.orders[r.PathValue("id")]
		var kept []domain.Booking
		for _, b := range o.Bookings {
			drop := false
			for _, id := range body.ExpireBookings {
				if b.ID == id {
					drop = true
				}
			}
			if !drop {
				kept = append(kept, b)
			}
		}
		o.Bookings = kept
		f.orders[o.ID] = o
		writeJSON(w, o)
	})
	mux.HandleFunc("POST /orders/{id}/confirm", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		o := f.orders[r.PathValue("id")]
		o.Status = domain.OrderBooked
		f.orders[o.ID] = o
		writeJSON(w, o)
	})

	// Everything is behind the api key.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type browser struct {
	t       *testing.T
	mux     http.Handler
	cookies map[string]*http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	b.mux.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rr
}

func TestPortal_BrowseBookRemove(t *testing.T) {
	mr := miniredis.RunT(t)

	upstream := &fakeTurneo{orders: map[string]domain.Order{}}
	us := httptest.NewServer(upstream.handler(t))
	defer us.Close()

	client, err := turneo.New(us.URL, "test-key", 50, 5*time.Second)
	if err != nil {
		t.Fatalf("turneo.New: %v", err)
	}
	cache := redisad.New(mr.Addr(), "", 0)

	cfg := shared.Config{
		ResellerName:    "E2E Portal",
		PartnerID:       "partner-e2e",
		PageSize:        50,
		MaxVisiblePages: 5,
		SuccessBanner:   3 * time.Second,
		DraftTTL:        time.Minute,
		CacheTTL:        time.Minute,
		OrderCacheTTL:   time.Minute,
	}
	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Catalog: app.NewCatalogService(client, cache, cfg.CacheTTL),
		Orders:  app.NewOrderService(client, cache, nil, cfg.OrderCacheTTL),
		Drafts:  app.NewDraftService(cache, cfg.DraftTTL),
		Cfg:     cfg,
	})
	b := &browser{t: t, mux: srv.Mux(), cookies: map[string]*http.Cookie{}}

	// Browse the listing.
	rr := b.do(http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Douro Valley Wine Tour") {
		t.Fatalf("listing: status %d", rr.Code)
	}

	// Open the booking panel, walk the flow.
	rr = b.do(http.MethodGet, "/experiences/exp-1?book=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("panel: status %d", rr.Code)
	}
	steps := []struct {
		path string
		form url.Values
	}{
		{"/experiences/exp-1/booking/dates", url.Values{"from": {"2026-09-10"}}},
		{"/experiences/exp-1/booking/rate", url.Values{"rate": {"rate-1"}}},
		{"/experiences/exp-1/booking/availability", url.Values{"availability": {"av-1"}}},
		{"/experiences/exp-1/booking/details", url.Values{
			"adults": {"2"}, "children": {"0"}, "infants": {"0"},
			"firstName": {"Rui"}, "lastName": {"Costa"},
			"email": {"rui@example.com"}, "phone": {"+351911111111"},
		}},
	}
	for _, s := range steps {
		if rr := b.do(http.MethodPost, s.path, s.form); rr.Code != http.StatusSeeOther {
			t.Fatalf("%s: status %d, body: %s", s.path, rr.Code, rr.Body.String())
		}
	}

	rr = b.do(http.MethodPost, "/experiences/exp-1/booking/submit", url.Values{})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/orders/ord-1" {
		t.Fatalf("submit: status %d, location %q, body: %s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}

	// Order page shows both booking lines.
	rr = b.do(http.MethodGet, "/orders/ord-1", nil)
	body := rr.Body.String()
	if !strings.Contains(body, "PENDING") || !strings.Contains(body, "2 × Adult") {
		t.Fatalf("order page incomplete: %s", body)
	}

	// Remove the extra line; the page reflects the remainder.
	if rr := b.do(http.MethodPost, "/orders/ord-1/remove", url.Values{"booking": {"b2"}}); rr.Code != http.StatusSeeOther {
		t.Fatalf("remove: status %d", rr.Code)
	}
	rr = b.do(http.MethodGet, "/orders/ord-1", nil)
	body = rr.Body.String()
	if !strings.Contains(body, "Booking removed") {
		t.Fatal("expected the removal banner")
	}
	if got := strings.Count(body, "Remove booking"); got != 1 {
		t.Fatalf("expected one remaining removable booking, found %d", got)
	}
}
