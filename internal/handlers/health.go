package handlers

import "net/http"

const privacyText = `Privacy notice
This service logs clicks on the Instagram bio link (timestamp, IP, user-agent, referrer).
If you press Start in Telegram after clicking, we also store your Telegram user id and username
to link you to that click.
We do not receive your Instagram account identity from Instagram.
`

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func Privacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(privacyText))
}
