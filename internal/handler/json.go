package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

type ShortenRequest struct {
	URL string `json:"url"`
}

type ShortenResponse struct {
	Result string `json:"result"`
}

func (h *Handler) HandleShortenJSON(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	contentType := r.Header.Get("Content-Type")
	contentEncoding := r.Header.Get("Content-Encoding")

	if contentEncoding != "gzip" && !strings.Contains(contentType, "application/json") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var request ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeBodyError(w, err)
		return
	}

	originalURL := strings.TrimSpace(request.URL)
	if originalURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	shortURL, err := h.service.Shorten(r.Context(), originalURL)
	if err != nil {
		writeCreateError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ShortenResponse{Result: shortURL})
}
