package httpx

import (
	"log"
	"net/http"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
)

// AccessSink receives every completed request.
type AccessSink interface {
	Record(rec *models.AccessRecord)
}

// AccessLog measures each request, logs one line and hands the record to
// sink. Place it inside RequestID so the ID is available.
func AccessLog(sink AccessSink) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := NewStatusRecorder(w)

			next.ServeHTTP(sr, r)

			rec := &models.AccessRecord{
				Timestamp:  start,
				RequestID:  RequestIDFromContext(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     sr.Status,
				Bytes:      sr.Bytes,
				Duration:   time.Since(start),
				RemoteAddr: ClientIP(r),
				UserAgent:  r.UserAgent(),
			}

			log.Printf("[HTTP] %s %s %d %dB %v %s", rec.Method, rec.Path, rec.Status, rec.Bytes,
				rec.Duration.Round(time.Microsecond), rec.RemoteAddr)

			if sink != nil {
				sink.Record(rec)
			}
		})
	}
}
