package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	billingapp "rentdesk/internal/billing/application"
	billing "rentdesk/internal/billing/domain"
	billingmemory "rentdesk/internal/billing/infrastructure/memory"
	leasing "rentdesk/internal/leasing/domain"
	leasingmemory "rentdesk/internal/leasing/infrastructure/memory"
	meteringapp "rentdesk/internal/metering/application"
)

type zeroConsumption struct{}

func (zeroConsumption) PeriodConsumption(ctx context.Context, unitID, meterType string, start, end time.Time) (meteringapp.PeriodResult, error) {
	return meteringapp.PeriodResult{}, nil
}

type testClock struct{}

func (testClock) Now() time.Time {
	return time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
}

func newHandler(t *testing.T) *ReceiptHandler {
	t.Helper()
	contracts := leasingmemory.NewContractStore()
	contracts.Put(&leasing.ContractDetails{
		Contract: leasing.Contract{
			ID:         "c-1",
			UnitID:     "u-1",
			TenantID:   "t-1",
			StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
			RentAmount: 1000,
			Active:     true,
		},
		Tenant:   leasing.Tenant{ID: "t-1", FullName: "Maria Lopez"},
		Unit:     leasing.Unit{ID: "u-1", Name: "2B"},
		Property: leasing.Property{ID: "p-1", Address: "12 Hill St"},
	})
	service, err := billingapp.NewReceiptService(
		billingmemory.NewReceiptRepository(),
		contracts,
		leasingmemory.NewPaymentStore(),
		leasingmemory.NewExtraChargeStore(),
		zeroConsumption{},
		testClock{},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewReceiptHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestPreviewEndpoint(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/c-1/receipt?month=3&year=2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var receipt billing.Receipt
	if err := json.Unmarshal(resp.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if receipt.TotalDue != 1000 || receipt.Status != billing.StatusPendingReview {
		t.Fatalf("receipt = %+v", receipt)
	}
}

func TestPreviewRequiresMonthAndYear(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/c-1/receipt", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestPreviewUnknownContract(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/missing/receipt?month=3&year=2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
}

func TestIssueThenApproveFlow(t *testing.T) {
	handler := newHandler(t)

	issue := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/c-1/receipt?month=3&year=2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, issue)
	if resp.Code != http.StatusOK {
		t.Fatalf("issue status = %d, body %s", resp.Code, resp.Body.String())
	}

	patch := httptest.NewRequest(http.MethodPatch, "/api/v1/contracts/c-1/receipt/status?month=3&year=2024",
		strings.NewReader(`{"status":"approved"}`))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, patch)
	if resp.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", resp.Code, resp.Body.String())
	}
	var updated struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != billing.StatusApproved {
		t.Fatalf("status = %q, want approved", updated.Status)
	}
}

func TestStatusUpdateValidation(t *testing.T) {
	handler := newHandler(t)

	patch := httptest.NewRequest(http.MethodPatch, "/api/v1/contracts/c-1/receipt/status?month=3&year=2024",
		strings.NewReader(`{"status":"approved"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, patch)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("never-issued status update = %d, want 404", resp.Code)
	}

	issue := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/c-1/receipt?month=3&year=2024", nil)
	handler.ServeHTTP(httptest.NewRecorder(), issue)

	bad := httptest.NewRequest(http.MethodPatch, "/api/v1/contracts/c-1/receipt/status?month=3&year=2024",
		strings.NewReader(`{"status":"shredded"}`))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, bad)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid status update = %d, want 400", resp.Code)
	}
}

func TestPendingEndpoint(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/pending", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	handler := newHandler(t)
	cases := []struct {
		path        string
		contentType string
	}{
		{"/api/v1/contracts/c-1/receipt/export.pdf?month=3&year=2024", "application/pdf"},
		{"/api/v1/contracts/c-1/receipt/export.xlsx?month=3&year=2024", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body %s", tc.path, resp.Code, resp.Body.String())
		}
		if got := resp.Header().Get("Content-Type"); got != tc.contentType {
			t.Fatalf("%s content type = %q, want %q", tc.path, got, tc.contentType)
		}
		if resp.Body.Len() == 0 {
			t.Fatalf("%s produced an empty document", tc.path)
		}
	}
}

func TestMethodRouting(t *testing.T) {
	handler := newHandler(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contracts/c-1/receipt?month=3&year=2024", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.Code)
	}
}
