package server

import "net/http"

var healthMsg = []byte("Ah, ha, ha, ha, stayin' alive, stayin' alive.")

// HealthHandler always responds with 200 status
func (s *HTTPServer) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write(healthMsg) // nolint:errcheck
}

// StatsHandler responds with the internal stats as a JSON object
func (s *HTTPServer) StatsHandler(stats StatsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, stats())
	}
}
