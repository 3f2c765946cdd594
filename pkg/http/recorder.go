package httpx

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
)

var errHijackUnsupported = errors.New("underlying ResponseWriter does not support hijacking")

// StatusRecorder captures the status code and body size written through it.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Bytes  int64
}

// NewStatusRecorder wraps w. Status defaults to 200 if never written.
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.Bytes += int64(n)

	return n, err
}

// ReadFrom keeps the sendfile path of the wrapped writer available to
// http.ServeContent.
func (r *StatusRecorder) ReadFrom(src io.Reader) (int64, error) {
	if rf, ok := r.ResponseWriter.(io.ReaderFrom); ok {
		n, err := rf.ReadFrom(src)
		r.Bytes += n

		return n, err
	}

	n, err := io.Copy(struct{ io.Writer }{r.ResponseWriter}, src)
	r.Bytes += n

	return n, err
}

// Flush forwards to the wrapped writer when it supports flushing.
func (r *StatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}

	r.Status = http.StatusSwitchingProtocols

	return h.Hijack()
}

// Unwrap supports http.ResponseController.
func (r *StatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
