package web

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

type Templates struct {
	dashboard *template.Template
}

func NewTemplates() (*Templates, error) {
	dashboard, err := template.New("dashboard.html").ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Templates{dashboard: dashboard}, nil
}

type DashboardData struct {
	Token          string
	Limit          int
	RefreshSeconds int
}

// Dashboard serves the HTML click table. The page polls /admin/json on a
// fixed interval and re-renders client side; there is no server push.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		Token:          r.URL.Query().Get("token"),
		Limit:          defaultJSONLimit,
		RefreshSeconds: 10,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.dashboard.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
