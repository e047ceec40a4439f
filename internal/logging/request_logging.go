package logging

import (
	"net/http"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// RequestLoggerMiddleware decorates a Handler with debug-level logging of all requests. Streaming
// responses are logged when the stream starts and again when it ends.
func RequestLoggerMiddleware(loggers ldlog.Loggers) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			wrappedWriter := loggingHTTPResponseWriter{loggers: loggers, writer: w, request: req, startTime: time.Now()}
			next.ServeHTTP(&wrappedWriter, req)
			wrappedWriter.logRequest()
		})
	}
}

type loggingHTTPResponseWriter struct {
	loggers      ldlog.Loggers
	writer       http.ResponseWriter
	request      *http.Request
	startTime    time.Time
	statusCode   int
	streaming    bool
	bytesWritten uint64
}

func (w *loggingHTTPResponseWriter) Header() http.Header {
	return w.writer.Header()
}

func (w *loggingHTTPResponseWriter) Write(data []byte) (int, error) {
	if w.statusCode == 0 {
		w.WriteHeader(http.StatusOK)
	}
	w.bytesWritten += uint64(len(data))
	return w.writer.Write(data)
}

func (w *loggingHTTPResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	if strings.Contains(w.writer.Header().Get("Content-Type"), "text/event-stream") {
		w.streaming = true
		w.logRequest()
	}
	w.writer.WriteHeader(statusCode)
}

func (w *loggingHTTPResponseWriter) logRequest() {
	if !w.loggers.IsDebugEnabled() {
		return
	}
	switch {
	case w.streaming && w.bytesWritten == 0:
		w.loggers.Debugf("Request: method=%s url=%s status=%d (streaming)",
			w.request.Method, w.request.URL, w.statusCode)
	case w.streaming:
		w.loggers.Debugf("Stream closed: url=%s bytes=%d duration=%s",
			w.request.URL, w.bytesWritten, time.Since(w.startTime).Round(time.Millisecond))
	default:
		if w.statusCode == 0 {
			w.statusCode = http.StatusOK
		}
		w.loggers.Debugf("Request: method=%s url=%s status=%d bytes=%d",
			w.request.Method, w.request.URL, w.statusCode, w.bytesWritten)
	}
}

// Flush is required so that streaming handlers can use the wrapped writer as an http.Flusher.
func (w *loggingHTTPResponseWriter) Flush() {
	if f, ok := w.writer.(http.Flusher); ok {
		f.Flush()
	}
}
