package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector counts served requests by outcome class.
type Collector struct {
	requests     uint64
	clientErrors uint64
	serverErrors uint64
	rateLimited  uint64
	uploads      uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Observe(status int) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.requests, 1)
	switch {
	case status == http.StatusTooManyRequests:
		atomic.AddUint64(&c.rateLimited, 1)
		atomic.AddUint64(&c.clientErrors, 1)
	case status >= 500:
		atomic.AddUint64(&c.serverErrors, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
}

func (c *Collector) IncUploads(n int) {
	if c == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&c.uploads, uint64(n))
}

type Snapshot struct {
	Requests     uint64
	ClientErrors uint64
	ServerErrors uint64
	RateLimited  uint64
	Uploads      uint64
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Requests:     atomic.LoadUint64(&c.requests),
		ClientErrors: atomic.LoadUint64(&c.clientErrors),
		ServerErrors: atomic.LoadUint64(&c.serverErrors),
		RateLimited:  atomic.LoadUint64(&c.rateLimited),
		Uploads:      atomic.LoadUint64(&c.uploads),
	}
}

// WriteText renders the snapshot in the Prometheus text exposition format.
func (c *Collector) WriteText(w http.ResponseWriter) {
	s := c.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	counter(w, "jobboard_http_requests_total", "Total number of HTTP requests.", s.Requests)
	counter(w, "jobboard_http_client_errors_total", "Total number of 4xx HTTP responses.", s.ClientErrors)
	counter(w, "jobboard_http_server_errors_total", "Total number of 5xx HTTP responses.", s.ServerErrors)
	counter(w, "jobboard_http_rate_limited_total", "Total number of 429 HTTP responses.", s.RateLimited)
	counter(w, "jobboard_uploaded_files_total", "Total number of stored application files.", s.Uploads)
}

func counter(w http.ResponseWriter, name, help string, value uint64) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
