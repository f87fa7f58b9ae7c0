package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"experiences_portal/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"money":    fmtMoney,
	"moneyPtr": fmtMoneyPtr,
	"slot":     fmtSlot,
	"excerpt":  excerpt,
	"amount":   fmtAmount,
	"str":      derefStr,
}

// pages holds one template set per page, each sharing layout.tmpl. The
// layout is the executed template; pages fill its title/content blocks.
var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"experiences", "experience", "order", "orders", "error"} {
		pages[name] = template.Must(template.New("layout.tmpl").
			Funcs(funcs).
			ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl"))
	}
}

// render buffers the whole page so a template failure never leaks half a
// document; it degrades to a plain 500 instead.
func render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := pages[page].Execute(&buf, data); err != nil {
		log.Error().Str("page", page).Err(err).Msg("template render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func fmtMoney(m domain.Money) string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

func fmtMoneyPtr(m *domain.Money) string {
	if m == nil {
		return ""
	}
	return fmtMoney(*m)
}

// fmtSlot renders an availability's local time without the upstream's "T"
// separator.
func fmtSlot(localTime string) string {
	return strings.Replace(localTime, "T", " ", 1)
}

func fmtAmount(a *float64) string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *a)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], " ")
	if cut <= 0 {
		cut = n
	}
	return s[:cut] + "…"
}
