package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const port = 6021

// StartServer exposes the prometheus scrape endpoint.
// It blocks, so it is expected to be run in a separate routine.
func StartServer() error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}
