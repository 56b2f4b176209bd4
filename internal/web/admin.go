// Package web is the token-gated admin reporting surface: CSV and JSON
// exports of the click log, an auto-refreshing dashboard, webhook
// registration and a QR code for the bio link.
package web

import (
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/soletra/ig2tg/internal/config"
	"github.com/soletra/ig2tg/internal/geo"
	"github.com/soletra/ig2tg/internal/handlers"
	"github.com/soletra/ig2tg/internal/store"
	"github.com/soletra/ig2tg/internal/telegram"
)

const (
	defaultCSVLimit  = 5000
	defaultJSONLimit = 200
)

// Column order is part of the export contract; keep it stable.
var csvHeader = []string{
	"token", "ts", "ip", "user_agent", "referrer",
	"tg_user_id", "tg_username", "tg_first_name", "tg_last_name", "linked_ts",
}

type AdminHandler struct {
	store store.Store
	cfg   *config.Config
	tg    *telegram.Client
	geo   *geo.Reader
	log   *zap.Logger
	tmpl  *Templates
}

func NewAdminHandler(st store.Store, cfg *config.Config, tg *telegram.Client, geoReader *geo.Reader, log *zap.Logger) (*AdminHandler, error) {
	tmpl, err := NewTemplates()
	if err != nil {
		return nil, err
	}
	return &AdminHandler{store: st, cfg: cfg, tg: tg, geo: geoReader, log: log, tmpl: tmpl}, nil
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(handlers.AdminAuth(h.cfg.AdminToken))

		r.Get("/", h.Dashboard)
		r.Get("/csv", h.CSV)
		r.Get("/json", h.JSON)
		r.Get("/set_webhook", h.SetWebhook)
		r.Get("/qr", h.QRCode)
	})
}

func (h *AdminHandler) CSV(w http.ResponseWriter, r *http.Request) {
	clicks, err := h.store.RecentClicks(r.Context(), limitParam(r, defaultCSVLimit))
	if err != nil {
		h.log.Error("admin: csv export", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, c := range clicks {
		cw.Write([]string{
			c.Token,
			strconv.FormatInt(c.TS, 10),
			c.IP,
			c.UserAgent,
			c.Referrer,
			formatNullInt(c.TGUserID),
			formatNullStr(c.TGUsername),
			formatNullStr(c.TGFirstName),
			formatNullStr(c.TGLastName),
			formatNullInt(c.LinkedTS),
		})
	}
	cw.Flush()
}

type jsonExport struct {
	Clicks []clickRow `json:"clicks"`
	Total  int        `json:"total"`
}

func (h *AdminHandler) JSON(w http.ResponseWriter, r *http.Request) {
	clicks, err := h.store.RecentClicks(r.Context(), limitParam(r, defaultJSONLimit))
	if err != nil {
		h.log.Error("admin: json export", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// The store already orders by ts; re-sort anyway so the contract does
	// not depend on backend behavior.
	sort.SliceStable(clicks, func(i, j int) bool { return clicks[i].TS > clicks[j].TS })

	rows := make([]clickRow, 0, len(clicks))
	for _, c := range clicks {
		rows = append(rows, h.enrich(c))
	}

	writeJSON(w, http.StatusOK, jsonExport{Clicks: rows, Total: len(rows)})
}

func (h *AdminHandler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	webhookURL := h.cfg.WebhookURL()
	ok, err := h.tg.RegisterWebhook(r.Context(), webhookURL)
	if err != nil {
		h.log.Error("admin: set webhook", zap.Error(err), zap.String("url", webhookURL))
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	h.log.Info("admin: webhook registered", zap.String("url", webhookURL))
	writeJSON(w, http.StatusOK, map[string]any{"ok": ok, "url": webhookURL})
}

func limitParam(r *http.Request, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func formatNullInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatNullStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
