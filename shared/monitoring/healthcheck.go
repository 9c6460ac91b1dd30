package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"trendwatch/internal/models"
)

// ReportSource exposes the most recent run report, nil before any run.
type ReportSource interface {
	LastReport() *models.RunReport
}

type HealthServer struct {
	monitor *Monitor
	reports ReportSource
	port    string
}

func NewHealthServer(monitor *Monitor, reports ReportSource, port string) *HealthServer {
	if port == "" {
		port = "8080"
	}
	return &HealthServer{
		monitor: monitor,
		reports: reports,
		port:    port,
	}
}

func (h *HealthServer) Start() {
	http.HandleFunc("/health", h.healthHandler)
	http.HandleFunc("/status", h.statusHandler)
	http.HandleFunc("/report", h.reportHandler)

	log.Printf("Health check server starting on port %s", h.port)
	go func() {
		if err := http.ListenAndServe(":"+h.port, nil); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}

// reportHandler serves the latest ranked trend report as JSON.
func (h *HealthServer) reportHandler(w http.ResponseWriter, r *http.Request) {
	report := h.reports.LastReport()
	if report == nil {
		http.Error(w, "no report available yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		log.Printf("Failed to encode report: %v", err)
	}
}
