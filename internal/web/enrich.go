package web

import (
	"encoding/json"
	"net/http"

	"github.com/mssola/useragent"

	"github.com/soletra/ig2tg/internal/store"
)

// clickRow is a stored click plus display-only fields derived at read time.
// Nothing here is persisted.
type clickRow struct {
	store.Click
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
	Country string `json:"country"`
}

func (h *AdminHandler) enrich(c store.Click) clickRow {
	ua := useragent.New(c.UserAgent)
	browser, _ := ua.Browser()

	device := "desktop"
	if ua.Mobile() {
		device = "mobile"
	} else if ua.Bot() {
		device = "bot"
	}

	return clickRow{
		Click:   c,
		Browser: browser,
		OS:      ua.OS(),
		Device:  device,
		Country: h.geo.Country(c.IP),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
