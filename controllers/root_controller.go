package controllers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// rootHandler handles requests to the root path
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("board proxy: API available under /api")); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// SetupRootRoute registers the root and health routes.
func SetupRootRoute(router *mux.Router) {
	router.HandleFunc("/", rootHandler).Methods(http.MethodGet)
	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
}
