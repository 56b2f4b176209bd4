// Package metrics exposes the service's Prometheus counters. Webhook
// outcomes are labelled so a linked click, an ignored update and a swallowed
// processing failure stay distinguishable even though the provider always
// receives a 200 ack.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeLinked  = "linked"
	OutcomeIgnored = "ignored"
	OutcomeError   = "error"
)

var (
	RedirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ig2tg_redirects_total",
		Help: "Bio-link visits that were recorded and redirected.",
	})

	WebhookUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ig2tg_webhook_updates_total",
		Help: "Telegram webhook updates by processing outcome.",
	}, []string{"outcome"})

	TelegramSendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ig2tg_telegram_send_failures_total",
		Help: "Failed best-effort sendMessage calls.",
	})
)
