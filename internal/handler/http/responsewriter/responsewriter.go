// Package responsewriter wraps http.ResponseWriter so middleware can see the
// status code and body size after the handler returns.
package responsewriter

import (
	"net/http"
)

// Recorder wraps http.ResponseWriter and remembers what was sent.
type Recorder struct {
	http.ResponseWriter
	status int
	size   int
	wrote  bool
}

// Wrap returns a Recorder around w. The status defaults to 200.
func Wrap(w http.ResponseWriter) *Recorder {
	if rec, ok := w.(*Recorder); ok {
		return rec
	}
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code only, as net/http does.
func (r *Recorder) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.status = status
	r.wrote = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if !r.wrote {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// StatusCode returns the recorded HTTP status code.
func (r *Recorder) StatusCode() int { return r.status }

// BytesWritten returns the number of body bytes written.
func (r *Recorder) BytesWritten() int { return r.size }

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
