package handlers

import (
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/soletra/ig2tg/internal/config"
	"github.com/soletra/ig2tg/internal/metrics"
	"github.com/soletra/ig2tg/internal/store"
	"github.com/soletra/ig2tg/internal/token"
)

// RedirectHandler serves the Instagram bio link. Every visit mints a fresh
// click token, records the click and bounces the visitor into the Telegram
// deep link carrying that token.
type RedirectHandler struct {
	Store store.Store
	Cfg   *config.Config
	Log   *zap.Logger
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tok, err := token.New()
	if err != nil {
		h.Log.Error("mint click token", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// chi's RealIP middleware already sets RemoteAddr from X-Forwarded-For/X-Real-IP
	ip, _, splitErr := net.SplitHostPort(r.RemoteAddr)
	if splitErr != nil {
		ip = r.RemoteAddr
	}

	click := store.Click{
		Token:     tok,
		TS:        time.Now().Unix(),
		IP:        ip,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}

	if err := h.Store.InsertClick(r.Context(), click); err != nil {
		h.Log.Error("record click", zap.Error(err), zap.String("token", tok))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.RedirectsTotal.Inc()
	http.Redirect(w, r, h.Cfg.DeepLink(tok), http.StatusFound)
}
