package pipeline

import (
	"errors"
	"net/http"
)

// ErrResponseClosed is returned when writing to a response that has been
// closed or sealed.
var ErrResponseClosed = errors.New("pipeline: response is closed")

// Response is the outgoing half of an exchange. It wraps an
// http.ResponseWriter and records what has been written so far. Once the
// body has started the status can no longer change, and once the response
// is closed nothing can be written to it at all.
//
// A Response is owned by one stage at a time and is not safe for
// concurrent use.
type Response struct {
	rw      http.ResponseWriter
	status  int
	written int64
	closed  bool
}

// NewResponse wraps rw.
func NewResponse(rw http.ResponseWriter) *Response {
	return &Response{rw: rw}
}

// Header returns the header map that will be sent with WriteHeader.
func (w *Response) Header() http.Header {
	return w.rw.Header()
}

// WriteHeader sends the status line and headers. Only the first call has an
// effect, and none has once the response is closed.
func (w *Response) WriteHeader(status int) {
	if w.closed || w.status != 0 {
		return
	}

	w.status = status
	w.rw.WriteHeader(status)
}

// Write appends p to the body, sending a 200 status first if none was sent.
func (w *Response) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrResponseClosed
	}

	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.rw.Write(p)
	w.written += int64(n)

	return n, err
}

// Close flushes buffered data to the client and marks the response
// complete. Closing twice is a no-op.
func (w *Response) Close() error {
	if w.closed {
		return nil
	}

	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}

	if f, ok := w.rw.(http.Flusher); ok {
		f.Flush()
	}

	w.closed = true
	return nil
}

// seal marks the response complete without touching the connection.
func (w *Response) seal() {
	w.closed = true
}

// Started reports whether the status line has been sent.
func (w *Response) Started() bool {
	return w.status != 0
}

// Closed reports whether the response was closed or sealed.
func (w *Response) Closed() bool {
	return w.closed
}

// Status returns the status sent to the client, or 0 if none was sent yet.
func (w *Response) Status() int {
	return w.status
}

// BytesWritten returns the number of body bytes written.
func (w *Response) BytesWritten() int64 {
	return w.written
}
