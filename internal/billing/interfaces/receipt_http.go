package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentdesk/internal/audit"
	billingapp "rentdesk/internal/billing/application"
	billing "rentdesk/internal/billing/domain"
	leasing "rentdesk/internal/leasing/domain"
	"rentdesk/internal/observability/metrics"
)

// ReceiptHandler handles receipt APIs under /api/v1/contracts and /api/v1/receipts.
type ReceiptHandler struct {
	service     *billingapp.ReceiptService
	auditLogger audit.Logger
}

// NewReceiptHandler constructs a handler.
func NewReceiptHandler(service *billingapp.ReceiptService, auditLogger audit.Logger) (*ReceiptHandler, error) {
	if service == nil {
		return nil, errors.New("receipt handler: nil service")
	}
	return &ReceiptHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes receipt operations.
func (h *ReceiptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/receipts/pending" && r.Method == http.MethodGet {
		h.handlePending(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/contracts/") {
		rest := strings.TrimPrefix(path, "/api/v1/contracts/")
		h.handleContract(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReceiptHandler) handleContract(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] != "receipt" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	contractID := parts[0]

	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			h.handlePreview(w, r, contractID)
			return
		case http.MethodPost:
			h.handleIssue(w, r, contractID)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "status":
			if r.Method == http.MethodPatch {
				h.handleUpdateStatus(w, r, contractID)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, contractID, "pdf")
				return
			}
		case "export.xlsx":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, contractID, "xlsx")
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReceiptHandler) handlePreview(w http.ResponseWriter, r *http.Request, contractID string) {
	month, year, err := monthYearQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	receipt, err := h.service.Preview(r.Context(), contractID, month, year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(receipt)
}

func (h *ReceiptHandler) handleIssue(w http.ResponseWriter, r *http.Request, contractID string) {
	month, year, err := monthYearQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	receipt, err := h.service.Issue(r.Context(), contractID, month, year)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(receipt)
	h.logAudit(r, receipt, "receipt.issue", map[string]any{
		"month": month,
		"year":  year,
	})
}

func (h *ReceiptHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request, contractID string) {
	month, year, err := monthYearQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	receipt, err := h.service.UpdateStatus(r.Context(), contractID, month, year, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	resp := map[string]any{
		"receipt_id": receipt.ID,
		"status":     receipt.Status,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
	h.logAudit(r, receipt, "receipt.status", map[string]any{
		"status": receipt.Status,
	})
}

func (h *ReceiptHandler) handlePending(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPendingPayable(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *ReceiptHandler) handleExport(w http.ResponseWriter, r *http.Request, contractID, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReceiptExport(format, result, time.Since(start))
	}()

	month, year, err := monthYearQuery(r)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	receipt, err := h.service.Preview(r.Context(), contractID, month, year)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildReceiptPDF(receipt)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildReceiptXLSX(receipt)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, receipt, "receipt.export", map[string]any{"format": format})
}

func (h *ReceiptHandler) logAudit(r *http.Request, receipt *billing.Receipt, action string, meta map[string]any) {
	if h.auditLogger == nil || receipt == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        audit.ActorFromRequest(r),
		Action:       action,
		ResourceType: "receipt",
		ResourceID:   receipt.ID,
		ContractID:   receipt.ContractID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func monthYearQuery(r *http.Request) (int, int, error) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, errors.New("month is required")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errors.New("year is required")
	}
	return month, year, nil
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, leasing.ErrContractNotFound), errors.Is(err, billing.ErrReceiptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, billing.ErrDuplicateReceipt):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, billing.ErrInvalidStatus), errors.Is(err, billing.ErrInvalidMonth):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
