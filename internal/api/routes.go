package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Flows
	mux.Handle("POST /api/v1/flows/validate", chain(http.HandlerFunc(h.ValidateFlow)))
	mux.Handle("POST /api/v1/flows/import", chain(http.HandlerFunc(h.ImportFlow)))

	// Executions
	mux.Handle("POST /api/v1/executions", chain(http.HandlerFunc(h.Execute)))
	mux.Handle("POST /api/v1/executions/stream", chain(http.HandlerFunc(h.StreamExecution)))
	mux.Handle("POST /api/v1/executions/artifact", chain(http.HandlerFunc(h.DownloadArtifact)))
}
