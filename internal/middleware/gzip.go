package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/MikhailRaia/url-shortcuts/internal/pool"
	"github.com/rs/zerolog/log"
)

var compressibleTypes = []string{
	"application/json",
	"text/html",
	"text/plain",
}

// gzipWriters recycles compressors between responses.
var gzipWriters = pool.New[*pooledGzipWriter](32)

type pooledGzipWriter struct {
	*gzip.Writer
}

func (p *pooledGzipWriter) Reset() {
	p.Writer.Reset(io.Discard)
}

func acquireGzipWriter(w io.Writer) *gzip.Writer {
	if p, ok := gzipWriters.Get(); ok {
		p.Writer.Reset(w)
		return p.Writer
	}
	gz, _ := gzip.NewWriterLevel(w, gzip.BestSpeed)
	return gz
}

// gzipResponseWriter decides whether to compress once the handler sets the
// status, based on the Content-Type it chose.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if statusCode != http.StatusNoContent && statusCode != http.StatusNotModified && isCompressible(w.Header().Get("Content-Type")) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")
		w.gz = acquireGzipWriter(w.ResponseWriter)
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gz != nil {
		return w.gz.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *gzipResponseWriter) close() {
	if w.gz == nil {
		return
	}
	if err := w.gz.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to finish gzip response")
	}
	gzipWriters.Put(&pooledGzipWriter{Writer: w.gz})
	w.gz = nil
}

// GzipMiddleware compresses text and JSON responses when the client accepts gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.close()

		next.ServeHTTP(gw, r)
	})
}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Failed to read gzipped request", http.StatusBadRequest)
			return
		}
		defer gzReader.Close()

		r.Body = &gzipBody{Reader: gzReader, orig: r.Body}
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}

type gzipBody struct {
	*gzip.Reader
	orig      io.ReadCloser
	closeOnce sync.Once
}

func (b *gzipBody) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.orig.Close()
	})
	return err
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
