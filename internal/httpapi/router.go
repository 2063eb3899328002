package httpapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"kdrama-dashboard/internal/dataset"
	"kdrama-dashboard/internal/quiz"
)

const maxLoggedBodyBytes = 2048

func NewRouter(service *quiz.Service, data *dataset.Dataset, logger *slog.Logger) http.Handler {
	api := NewAPI(service, data, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/quiz", api.HandleQuiz)
	mux.HandleFunc("/quiz/actions", api.HandleQuizAction)
	mux.HandleFunc("/stats/years", api.HandleYearCounts)
	mux.HandleFunc("/stats/genres", api.HandleTopGenres)
	mux.HandleFunc("/stats/words", api.HandleTitleWords)
	mux.HandleFunc("/years", api.HandleYears)
	mux.HandleFunc("/records", api.HandleRecords)

	return withRequestLogging(api.logger, mux)
}

// statusRecorder captures the status and size of a response, plus a prefix of
// the body for debug logging.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	logBody      bytes.Buffer
	maxLogBytes  int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written

	if remaining := r.maxLogBytes - r.logBody.Len(); remaining > 0 {
		chunk := p[:written]
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
			r.truncated = true
		}
		r.logBody.Write(chunk)
	} else if written > 0 {
		r.truncated = true
	}
	return written, err
}

func withRequestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBodyBytes,
		}

		next.ServeHTTP(recorder, r)

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", recorder.statusCode),
			slog.Int("bytes", recorder.bytesWritten),
			slog.Duration("duration", time.Since(started)),
		}
		if logger.Enabled(r.Context(), slog.LevelDebug) {
			attrs = append(attrs,
				slog.String("body", recorder.logBody.String()),
				slog.Bool("body_truncated", recorder.truncated),
			)
		}

		level := slog.LevelInfo
		if recorder.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(r.Context(), level, "http request", attrs...)
	})
}
