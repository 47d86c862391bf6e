package leasinghttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rentdesk/internal/audit"
	leasingapp "rentdesk/internal/leasing/application"
	leasing "rentdesk/internal/leasing/domain"
)

// ContractHandler serves contract lifecycle operations.
type ContractHandler struct {
	service     *leasingapp.ContractService
	auditLogger audit.Logger
}

// NewContractHandler constructs a handler.
func NewContractHandler(service *leasingapp.ContractService, auditLogger audit.Logger) (*ContractHandler, error) {
	if service == nil {
		return nil, errors.New("contract handler: nil service")
	}
	return &ContractHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/contracts and POST /api/v1/contracts/{id}/close.
func (h *ContractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/api/v1/contracts" {
		h.handleOpen(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/contracts/")
	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] == "close" {
		h.handleClose(w, r, parts[0])
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

type openContractRequest struct {
	ID               string  `json:"id"`
	UnitID           string  `json:"unit_id"`
	TenantID         string  `json:"tenant_id"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	RentAmount       float64 `json:"rent_amount"`
	AdvancePayment   float64 `json:"advance_payment"`
	GuaranteeDeposit float64 `json:"guarantee_deposit"`
}

func (h *ContractHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req openContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	contract := &leasing.Contract{
		ID:               req.ID,
		UnitID:           req.UnitID,
		TenantID:         req.TenantID,
		StartDate:        start.UTC(),
		EndDate:          end.UTC(),
		RentAmount:       req.RentAmount,
		AdvancePayment:   req.AdvancePayment,
		GuaranteeDeposit: req.GuaranteeDeposit,
		Active:           true,
	}
	if err := h.service.Open(r.Context(), contract); err != nil {
		respondLifecycleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": contract.ID})
	h.logAudit(r, contract.ID, "contract.open", map[string]any{"unit_id": contract.UnitID})
}

func (h *ContractHandler) handleClose(w http.ResponseWriter, r *http.Request, contractID string) {
	if err := h.service.Close(r.Context(), contractID); err != nil {
		respondLifecycleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"id": contractID, "active": false})
	h.logAudit(r, contractID, "contract.close", nil)
}

func (h *ContractHandler) logAudit(r *http.Request, contractID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        audit.ActorFromRequest(r),
		Action:       action,
		ResourceType: "contract",
		ResourceID:   contractID,
		ContractID:   contractID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leasing.ErrContractNotFound), errors.Is(err, leasing.ErrUnitNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, leasing.ErrUnitUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, leasing.ErrInvalidPeriod):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
