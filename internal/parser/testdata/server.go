package server

import (
	"fmt"
	"net/http"
)

const (
	DefaultPort    = 8080
	DefaultTimeout = 30
)

var globalConfig = Config{Port: DefaultPort}

// Config holds server settings.
type Config struct {
	Port    int
	Timeout int
}

// Handler serves requests using a Config.
type Handler struct {
	config *Config
}

// NewHandler builds a Handler around config.
func NewHandler(config *Config) *Handler {
	return &Handler{config: config}
}

// ServeHTTP answers every request with a greeting.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Hello, World!")
}
