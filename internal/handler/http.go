package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MikhailRaia/url-shortcuts/internal/logger"
	"github.com/MikhailRaia/url-shortcuts/internal/middleware"
	"github.com/MikhailRaia/url-shortcuts/internal/model"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// maxBodySize caps request bodies, after decompression, at 1 MiB.
const maxBodySize = 1 << 20

const formContentType = "application/x-www-form-urlencoded"

// ShortcutService is the business logic the transport layer calls into.
type ShortcutService interface {
	Shorten(ctx context.Context, originalURL string) (string, error)
	Resolve(ctx context.Context, key string) (string, bool, error)
	Stats(ctx context.Context) (model.Stats, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	service ShortcutService
}

func NewHandler(service ShortcutService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)
	r.Use(middleware.Metrics)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Get("/", h.handleIndex)
	r.Post("/", h.handleShorten)
	r.Post("/api/shorten", h.HandleShortenJSON)
	r.Get("/api/stats", h.handleStats)
	r.Get("/ping", h.handlePing)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/{key}", h.handleRedirect)

	return r
}

func (h *Handler) handleShorten(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	contentType := r.Header.Get("Content-Type")

	var (
		originalURL string
		err         error
	)

	switch {
	case strings.HasPrefix(contentType, formContentType):
		originalURL, err = readFormURL(r)
	case r.Header.Get("Content-Encoding") == "gzip",
		contentType == "",
		strings.Contains(contentType, "text/plain"):
		originalURL, err = readTextURL(r)
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err != nil {
		writeBodyError(w, err)
		return
	}

	if originalURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	shortURL, err := h.service.Shorten(r.Context(), originalURL)
	if err != nil {
		writeCreateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(shortURL))
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	originalURL, found, err := h.service.Resolve(r.Context(), key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to resolve shortcut")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read stats")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Storage ping failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func readTextURL(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func readFormURL(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.PostForm.Get("url")), nil
}

func writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
}

func writeCreateError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrEmptyURL) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	log.Error().Err(err).Msg("Failed to create shortcut")
	w.WriteHeader(http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	response, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}
