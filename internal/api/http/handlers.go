package apihttp

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const timeLayout = time.RFC3339

// PortfolioStatsHandler serves portfolio-wide occupancy and receivable totals.
type PortfolioStatsHandler struct {
	db *sql.DB
}

// NewPortfolioStatsHandler constructs a PortfolioStatsHandler.
func NewPortfolioStatsHandler(db *sql.DB) *PortfolioStatsHandler {
	return &PortfolioStatsHandler{db: db}
}

// ServeHTTP handles GET /api/v1/stats.
func (h *PortfolioStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	stats, err := queryPortfolioStats(r.Context(), h.db)
	if err != nil {
		http.Error(w, "query portfolio stats error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// ReceivablesHandler serves the list of approved receipts still carrying debt.
type ReceivablesHandler struct {
	db      *sql.DB
	pageCap int
}

// NewReceivablesHandler constructs a ReceivablesHandler.
func NewReceivablesHandler(db *sql.DB, pageCap int) *ReceivablesHandler {
	return &ReceivablesHandler{db: db, pageCap: pageCap}
}

// ServeHTTP handles GET /api/v1/receivables.
func (h *ReceivablesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	limit, err := resolveLimit(r, h.pageCap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryReceivables(r.Context(), h.db, limit)
	if err != nil {
		http.Error(w, "query receivables error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// ExportReceivablesCSVHandler serves receivables CSV exports.
type ExportReceivablesCSVHandler struct {
	db      *sql.DB
	pageCap int
}

// NewExportReceivablesCSVHandler constructs a ExportReceivablesCSVHandler.
func NewExportReceivablesCSVHandler(db *sql.DB, pageCap int) *ExportReceivablesCSVHandler {
	return &ExportReceivablesCSVHandler{db: db, pageCap: pageCap}
}

// ServeHTTP handles GET /api/v1/exports/receivables.csv.
func (h *ExportReceivablesCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	limit, err := resolveLimit(r, h.pageCap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryReceivables(r.Context(), h.db, limit)
	if err != nil {
		http.Error(w, "query receivables error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="receivables.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"receipt_id",
		"contract_id",
		"tenant_name",
		"unit_name",
		"property_address",
		"month",
		"year",
		"total_due",
		"total_payments",
		"balance",
		"updated_at",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.ReceiptID,
			row.ContractID,
			row.TenantName,
			row.UnitName,
			row.PropertyAddress,
			formatInt(row.Month),
			formatInt(row.Year),
			formatFloat(row.TotalDue),
			formatFloat(row.TotalPayments),
			formatFloat(row.Balance),
			formatTime(row.UpdatedAt),
		})
	}
	writer.Flush()
}

// ExportReceivablesXLSXHandler serves receivables workbook exports.
type ExportReceivablesXLSXHandler struct {
	db      *sql.DB
	pageCap int
}

// NewExportReceivablesXLSXHandler constructs a ExportReceivablesXLSXHandler.
func NewExportReceivablesXLSXHandler(db *sql.DB, pageCap int) *ExportReceivablesXLSXHandler {
	return &ExportReceivablesXLSXHandler{db: db, pageCap: pageCap}
}

// ServeHTTP handles GET /api/v1/exports/receivables.xlsx.
func (h *ExportReceivablesXLSXHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	limit, err := resolveLimit(r, h.pageCap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryReceivables(r.Context(), h.db, limit)
	if err != nil {
		http.Error(w, "query receivables error", http.StatusInternalServerError)
		return
	}

	book, err := buildReceivablesWorkbook(rows)
	if err != nil {
		http.Error(w, "build workbook error", http.StatusInternalServerError)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="receivables.xlsx"`)
	_ = book.Write(w)
}

type portfolioStats struct {
	PropertiesTotal  int     `json:"properties_total"`
	UnitsTotal       int     `json:"units_total"`
	UnitsOccupied    int     `json:"units_occupied"`
	ContractsOpen    int     `json:"contracts_open"`
	ReceiptsPending  int     `json:"receipts_pending"`
	ReceivablesCount int     `json:"receivables_count"`
	ReceivablesOwed  float64 `json:"receivables_owed"`
	GeneratedAt      string  `json:"generated_at"`
}

type receivableRow struct {
	ReceiptID       string    `json:"receipt_id"`
	ContractID      string    `json:"contract_id"`
	TenantName      string    `json:"tenant_name"`
	UnitName        string    `json:"unit_name"`
	PropertyAddress string    `json:"property_address"`
	Month           int       `json:"month"`
	Year            int       `json:"year"`
	TotalDue        float64   `json:"total_due"`
	TotalPayments   float64   `json:"total_payments"`
	Balance         float64   `json:"balance"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func queryPortfolioStats(ctx context.Context, db *sql.DB) (portfolioStats, error) {
	var stats portfolioStats
	err := db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM properties),
	(SELECT COUNT(*) FROM units),
	(SELECT COUNT(*) FROM units WHERE NOT available),
	(SELECT COUNT(*) FROM contracts WHERE active),
	(SELECT COUNT(*) FROM receipts WHERE status = 'pending_review'),
	(SELECT COUNT(*) FROM receipts WHERE status = 'approved' AND balance < 0),
	(SELECT COALESCE(SUM(-balance), 0) FROM receipts WHERE status = 'approved' AND balance < 0)`,
	).Scan(
		&stats.PropertiesTotal,
		&stats.UnitsTotal,
		&stats.UnitsOccupied,
		&stats.ContractsOpen,
		&stats.ReceiptsPending,
		&stats.ReceivablesCount,
		&stats.ReceivablesOwed,
	)
	if err != nil {
		return portfolioStats{}, err
	}
	stats.GeneratedAt = time.Now().UTC().Format(timeLayout)
	return stats, nil
}

func queryReceivables(ctx context.Context, db *sql.DB, limit int) ([]receivableRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT
	id,
	contract_id,
	tenant_name,
	unit_name,
	property_address,
	month,
	year,
	total_due,
	total_payments,
	balance,
	updated_at
FROM receipts
WHERE status = 'approved'
	AND balance < 0
ORDER BY year DESC, month DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []receivableRow
	for rows.Next() {
		var row receivableRow
		if err := rows.Scan(
			&row.ReceiptID,
			&row.ContractID,
			&row.TenantName,
			&row.UnitName,
			&row.PropertyAddress,
			&row.Month,
			&row.Year,
			&row.TotalDue,
			&row.TotalPayments,
			&row.Balance,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		row.UpdatedAt = row.UpdatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func buildReceivablesWorkbook(rows []receivableRow) (*excelize.File, error) {
	book := excelize.NewFile()
	const sheet = "Receivables"
	index, err := book.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	book.SetActiveSheet(index)
	if err := book.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []any{
		"Receipt", "Contract", "Tenant", "Unit", "Property",
		"Month", "Year", "Total Due", "Total Payments", "Balance", "Updated",
	}
	if err := book.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			row.ReceiptID,
			row.ContractID,
			row.TenantName,
			row.UnitName,
			row.PropertyAddress,
			row.Month,
			row.Year,
			row.TotalDue,
			row.TotalPayments,
			row.Balance,
			formatTime(row.UpdatedAt),
		}
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}
	return book, nil
}

func resolveLimit(r *http.Request, pageCap int) (int, error) {
	if pageCap <= 0 {
		pageCap = 500
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return pageCap, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > pageCap {
		limit = pageCap
	}
	return limit, nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timeLayout)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
