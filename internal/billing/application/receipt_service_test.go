package application

import (
	"context"
	"errors"
	"testing"
	"time"

	billing "rentdesk/internal/billing/domain"
	billingmemory "rentdesk/internal/billing/infrastructure/memory"
	leasing "rentdesk/internal/leasing/domain"
	leasingmemory "rentdesk/internal/leasing/infrastructure/memory"
	meteringapp "rentdesk/internal/metering/application"
	metering "rentdesk/internal/metering/domain"
)

type stubConsumption struct {
	results map[string]meteringapp.PeriodResult
	err     error
}

func (s stubConsumption) PeriodConsumption(ctx context.Context, unitID, meterType string, start, end time.Time) (meteringapp.PeriodResult, error) {
	_ = ctx
	_ = unitID
	_ = start
	_ = end
	if s.err != nil {
		return meteringapp.PeriodResult{}, s.err
	}
	return s.results[meterType], nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	service  *ReceiptService
	receipts *billingmemory.ReceiptRepository
	payments *leasingmemory.PaymentStore
	charges  *leasingmemory.ExtraChargeStore
}

func newFixture(t *testing.T, consumption stubConsumption) fixture {
	t.Helper()
	contracts := leasingmemory.NewContractStore()
	contracts.Put(&leasing.ContractDetails{
		Contract: leasing.Contract{
			ID:         "c-1",
			UnitID:     "u-1",
			TenantID:   "t-1",
			StartDate:  day(2024, time.January, 1),
			EndDate:    day(2024, time.December, 31),
			RentAmount: 1000,
			Active:     true,
		},
		Tenant:   leasing.Tenant{ID: "t-1", FullName: "Maria Lopez"},
		Unit:     leasing.Unit{ID: "u-1", Name: "2B"},
		Property: leasing.Property{ID: "p-1", Address: "12 Hill St"},
	})
	receipts := billingmemory.NewReceiptRepository()
	payments := leasingmemory.NewPaymentStore()
	charges := leasingmemory.NewExtraChargeStore()
	clock := fixedClock{now: day(2024, time.April, 2)}

	service, err := NewReceiptService(receipts, contracts, payments, charges, consumption, clock)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return fixture{service: service, receipts: receipts, payments: payments, charges: charges}
}

func TestPreviewComputesWithoutPersisting(t *testing.T) {
	f := newFixture(t, stubConsumption{results: map[string]meteringapp.PeriodResult{
		metering.MeterTypeLight: {Consumption: 40, Cost: 10},
	}})
	f.payments.Append(leasing.Payment{ID: "p1", ContractID: "c-1", Amount: 900, Date: day(2024, time.March, 10), Type: leasing.PaymentTypeRent})

	receipt, err := f.service.Preview(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if receipt.Status != billing.StatusPendingReview {
		t.Fatalf("status = %q, want pending_review", receipt.Status)
	}
	if receipt.TotalDue != 1010 {
		t.Fatalf("total due = %v, want 1010", receipt.TotalDue)
	}
	if receipt.TotalPayments != 900 {
		t.Fatalf("total payments = %v, want 900", receipt.TotalPayments)
	}
	if receipt.Balance != -110 {
		t.Fatalf("balance = %v, want -110", receipt.Balance)
	}
	if receipt.Period != "March 2024" {
		t.Fatalf("period = %q, want March 2024", receipt.Period)
	}
	if receipt.TenantName != "Maria Lopez" || receipt.UnitName != "2B" || receipt.PropertyAddress != "12 Hill St" {
		t.Fatalf("snapshot fields wrong: %+v", receipt)
	}

	stored, err := f.receipts.FindByKey(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored != nil {
		t.Fatal("preview must not persist")
	}

	// Previewing again with unchanged data yields the same result.
	again, err := f.service.Preview(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("second preview: %v", err)
	}
	if again.ID != receipt.ID || again.TotalDue != receipt.TotalDue || again.Balance != receipt.Balance {
		t.Fatalf("preview not idempotent: %+v vs %+v", again, receipt)
	}
}

func TestPreviewReturnsPersistedVerbatim(t *testing.T) {
	f := newFixture(t, stubConsumption{})
	issued, err := f.service.Issue(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// New billing data arrives after issue.
	f.payments.Append(leasing.Payment{ID: "p1", ContractID: "c-1", Amount: 500, Date: day(2024, time.March, 20), Type: leasing.PaymentTypeRent})

	preview, err := f.service.Preview(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.TotalPayments != issued.TotalPayments {
		t.Fatalf("preview drifted: payments %v, want %v", preview.TotalPayments, issued.TotalPayments)
	}
	if preview.ID != issued.ID {
		t.Fatalf("preview id = %q, want %q", preview.ID, issued.ID)
	}
}

func TestIssueLineItemOrderAndSigns(t *testing.T) {
	f := newFixture(t, stubConsumption{results: map[string]meteringapp.PeriodResult{
		metering.MeterTypeLight: {Consumption: 40, Cost: 10},
		metering.MeterTypeWater: {Consumption: 8, Cost: 1.25},
	}})
	f.charges.Append(leasing.ExtraCharge{ID: "x1", ContractID: "c-1", Description: "Lock repair", Amount: 25, Month: 3, Year: 2024})
	f.payments.Append(leasing.Payment{ID: "p1", ContractID: "c-1", Amount: 1000, Date: day(2024, time.March, 5), Type: leasing.PaymentTypeRent})

	receipt, err := f.service.Issue(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	wantDescriptions := []string{
		"Rent",
		"Electricity (40.0 units)",
		"Water (8.0 units)",
		"Lock repair",
		"Payment 2024-03-05 (rent)",
	}
	if len(receipt.Items) != len(wantDescriptions) {
		t.Fatalf("items = %d, want %d: %+v", len(receipt.Items), len(wantDescriptions), receipt.Items)
	}
	for i, want := range wantDescriptions {
		if receipt.Items[i].Description != want {
			t.Fatalf("item %d = %q, want %q", i, receipt.Items[i].Description, want)
		}
	}
	if receipt.Items[4].Amount != -1000 {
		t.Fatalf("payment line amount = %v, want -1000", receipt.Items[4].Amount)
	}
	if receipt.TotalDue != 1036.25 {
		t.Fatalf("total due = %v, want 1036.25", receipt.TotalDue)
	}
	if receipt.Balance != receipt.TotalPayments-receipt.TotalDue {
		t.Fatalf("balance invariant broken: %+v", receipt)
	}
}

func TestIssueSkipsNonPositiveConsumption(t *testing.T) {
	f := newFixture(t, stubConsumption{results: map[string]meteringapp.PeriodResult{
		metering.MeterTypeLight: {Consumption: 0, Cost: 0},
		metering.MeterTypeWater: {Consumption: -5, Cost: -0.75},
	}})

	receipt, err := f.service.Issue(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(receipt.Items) != 1 || receipt.Items[0].Description != "Rent" {
		t.Fatalf("expected only the rent line, got %+v", receipt.Items)
	}
	if receipt.TotalDue != 1000 {
		t.Fatalf("total due = %v, want 1000", receipt.TotalDue)
	}
}

func TestReissuePreservesStatusAndIdentity(t *testing.T) {
	f := newFixture(t, stubConsumption{})
	first, err := f.service.Issue(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), "c-1", 3, 2024, billing.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	f.payments.Append(leasing.Payment{ID: "p1", ContractID: "c-1", Amount: 1000, Date: day(2024, time.March, 28), Type: leasing.PaymentTypeRent})

	second, err := f.service.Issue(context.Background(), "c-1", 3, 2024)
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("identity changed: %q -> %q", first.ID, second.ID)
	}
	if second.Status != billing.StatusApproved {
		t.Fatalf("status = %q, want approved to survive reissue", second.Status)
	}
	if second.TotalPayments != 1000 {
		t.Fatalf("total payments = %v, want refreshed 1000", second.TotalPayments)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t, stubConsumption{})

	if _, err := f.service.UpdateStatus(context.Background(), "c-1", 3, 2024, "shredded"); !errors.Is(err, billing.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.service.UpdateStatus(context.Background(), "c-1", 3, 2024, billing.StatusApproved); !errors.Is(err, billing.ErrReceiptNotFound) {
		t.Fatalf("err = %v, want ErrReceiptNotFound for never-issued receipt", err)
	}
}

func TestIssueRejectsInvalidPeriod(t *testing.T) {
	f := newFixture(t, stubConsumption{})
	if _, err := f.service.Issue(context.Background(), "c-1", 13, 2024); !errors.Is(err, billing.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
	if _, err := f.service.Preview(context.Background(), "c-1", 0, 2024); !errors.Is(err, billing.ErrInvalidMonth) {
		t.Fatalf("err = %v, want ErrInvalidMonth", err)
	}
}

func TestIssueUnknownContract(t *testing.T) {
	f := newFixture(t, stubConsumption{})
	if _, err := f.service.Issue(context.Background(), "missing", 3, 2024); !errors.Is(err, leasing.ErrContractNotFound) {
		t.Fatalf("err = %v, want ErrContractNotFound", err)
	}
}

func TestListPendingPayableFilters(t *testing.T) {
	f := newFixture(t, stubConsumption{})
	seed := func(id string, month int, status string, balance float64) {
		err := f.receipts.Insert(context.Background(), &billing.Receipt{
			ID:         id,
			ContractID: "c-1",
			Month:      month,
			Year:       2024,
			Status:     status,
			Balance:    balance,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	seed("r-denied", 1, billing.StatusDenied, -50)
	seed("r-paid", 2, billing.StatusApproved, 20)
	seed("r-owing-feb", 3, billing.StatusApproved, -30)
	seed("r-owing-apr", 4, billing.StatusApproved, -70)

	list, err := f.service.ListPendingPayable(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(list), list)
	}
	if list[0].ID != "r-owing-apr" || list[1].ID != "r-owing-feb" {
		t.Fatalf("order wrong: %q then %q", list[0].ID, list[1].ID)
	}
}
