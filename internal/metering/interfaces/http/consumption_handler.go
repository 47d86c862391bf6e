package meteringhttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	meteringapp "rentdesk/internal/metering/application"
)

// ConsumptionHandler serves the live consumption dashboard view for a unit.
type ConsumptionHandler struct {
	calculator *meteringapp.ConsumptionCalculator
}

// NewConsumptionHandler constructs a handler.
func NewConsumptionHandler(calculator *meteringapp.ConsumptionCalculator) (*ConsumptionHandler, error) {
	if calculator == nil {
		return nil, errors.New("consumption handler: nil calculator")
	}
	return &ConsumptionHandler{calculator: calculator}, nil
}

// ServeHTTP handles GET /api/v1/units/{id}/consumption.
func (h *ConsumptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/units/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "consumption" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	result, err := h.calculator.Current(r.Context(), parts[0])
	if err != nil {
		http.Error(w, "consumption query error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
