package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rentdesk/internal/audit"
	leasing "rentdesk/internal/leasing/domain"
	settlementapp "rentdesk/internal/settlement/application"
)

// SettlementHandler serves end-of-contract settlement calculations.
type SettlementHandler struct {
	service     *settlementapp.SettlementService
	auditLogger audit.Logger
}

// NewSettlementHandler constructs a handler.
func NewSettlementHandler(service *settlementapp.SettlementService, auditLogger audit.Logger) (*SettlementHandler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	return &SettlementHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles GET /api/v1/contracts/{id}/settlement.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/contracts/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "settlement" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	contractID := parts[0]

	actualEnd, err := time.Parse("2006-01-02", r.URL.Query().Get("actual_end_date"))
	if err != nil {
		http.Error(w, "actual_end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.service.CalculateFinal(r.Context(), contractID, actualEnd.UTC())
	if err != nil {
		if errors.Is(err, leasing.ErrContractNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)

	if h.auditLogger != nil {
		meta, _ := json.Marshal(map[string]any{"actual_end_date": actualEnd.Format("2006-01-02")})
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        audit.ActorFromRequest(r),
			Action:       "settlement.calculate",
			ResourceType: "contract",
			ResourceID:   contractID,
			ContractID:   contractID,
			Metadata:     meta,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}
