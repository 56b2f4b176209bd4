package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/soletra/ig2tg/internal/metrics"
	"github.com/soletra/ig2tg/internal/store"
	"github.com/soletra/ig2tg/internal/telegram"
)

const (
	startCommand  = "/start"
	payloadPrefix = "ig_"
)

// WebhookHandler receives Telegram updates. Only /start messages carrying an
// ig_<token> payload attribute a click; everything else is acknowledged and
// dropped. The ack is always {"ok":true} — a non-200 would make Telegram
// redeliver the update — so processing failures are surfaced through logs
// and metrics instead of the response.
type WebhookHandler struct {
	Store store.Store
	TG    *telegram.Client
	Log   *zap.Logger
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer ack(w)

	var update tgmodels.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.Log.Debug("webhook: undecodable update", zap.Error(err))
		metrics.WebhookUpdatesTotal.WithLabelValues(metrics.OutcomeIgnored).Inc()
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil {
		h.Log.Debug("webhook: update without message", zap.Int64("update_id", update.ID))
		metrics.WebhookUpdatesTotal.WithLabelValues(metrics.OutcomeIgnored).Inc()
		return
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, startCommand) {
		h.Log.Debug("webhook: not a start command", zap.Int64("update_id", update.ID))
		metrics.WebhookUpdatesTotal.WithLabelValues(metrics.OutcomeIgnored).Inc()
		return
	}

	outcome := metrics.OutcomeIgnored
	clickToken := tokenFromPayload(startPayload(text))

	if clickToken != "" && msg.From != nil {
		user := store.TGUser{
			ID:        msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}
		if err := h.Store.LinkClick(r.Context(), clickToken, user); err != nil {
			// Swallowed on purpose: the ack contract wins. See metrics/logs.
			h.Log.Error("webhook: link click failed",
				zap.Error(err),
				zap.String("token", clickToken),
				zap.Int64("tg_user_id", user.ID),
			)
			outcome = metrics.OutcomeError
		} else {
			h.Log.Info("webhook: click linked",
				zap.String("token", clickToken),
				zap.Int64("tg_user_id", user.ID),
			)
			outcome = metrics.OutcomeLinked
		}
	} else {
		h.Log.Debug("webhook: start without usable payload", zap.Int64("update_id", update.ID))
	}

	if msg.Chat.ID != 0 {
		if err := h.TG.SendChannelInvite(r.Context(), msg.Chat.ID); err != nil {
			h.Log.Error("webhook: send channel invite", zap.Error(err), zap.Int64("chat_id", msg.Chat.ID))
			metrics.TelegramSendFailuresTotal.Inc()
		}
	}

	metrics.WebhookUpdatesTotal.WithLabelValues(outcome).Inc()
}

// startPayload returns whatever follows the command word. A single split, so
// the payload keeps any internal whitespace.
func startPayload(text string) string {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx:])
}

func tokenFromPayload(payload string) string {
	if !strings.HasPrefix(payload, payloadPrefix) {
		return ""
	}
	return strings.TrimPrefix(payload, payloadPrefix)
}

func ack(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
