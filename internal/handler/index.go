package handler

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Shortcuts</title></head>
<body>
<h1>Shortcuts</h1>
<p>{{.Shortcuts}} shortcuts stored.</p>
<form method="post" action="/">
<input type="url" name="url" placeholder="https://example.com">
</form>
</body>
</html>
`))

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read stats")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := indexTemplate.Execute(w, stats); err != nil {
		log.Error().Err(err).Msg("Failed to render index page")
	}
}
