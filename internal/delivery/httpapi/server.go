package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer assembles the batch job's small HTTP surface: the run trigger,
// a health probe, and prometheus metrics.
func NewServer(addr string, runHandler *RunHandler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/v1/run", runHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
