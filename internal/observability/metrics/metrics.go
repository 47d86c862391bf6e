package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "rentdesk_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	receiptPreviewTotal   *prometheus.CounterVec
	receiptPreviewLatency *prometheus.HistogramVec
	receiptIssueTotal     *prometheus.CounterVec
	receiptIssueLatency   *prometheus.HistogramVec
	receiptStatusTotal    *prometheus.CounterVec
	receiptStatusLatency  *prometheus.HistogramVec
	receiptExportTotal    *prometheus.CounterVec
	receiptExportLatency  *prometheus.HistogramVec

	settlementTotal   *prometheus.CounterVec
	settlementLatency *prometheus.HistogramVec

	consumptionTotal   *prometheus.CounterVec
	consumptionLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		receiptPreviewTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_preview_total",
				Help: "Total receipt preview operations by result",
			},
			[]string{"result"},
		)
		receiptPreviewLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "receipt_preview_latency_seconds",
				Help:    "Receipt preview latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		receiptIssueTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_issue_total",
				Help: "Total receipt issue operations by result",
			},
			[]string{"result"},
		)
		receiptIssueLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "receipt_issue_latency_seconds",
				Help:    "Receipt issue latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		receiptStatusTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_status_update_total",
				Help: "Total receipt status updates by result",
			},
			[]string{"result"},
		)
		receiptStatusLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "receipt_status_update_latency_seconds",
				Help:    "Receipt status update latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		receiptExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipt_export_total",
				Help: "Total receipt export operations by format and result",
			},
			[]string{"format", "result"},
		)
		receiptExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "receipt_export_latency_seconds",
				Help:    "Receipt export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		settlementTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_calculate_total",
				Help: "Total final settlement calculations by result",
			},
			[]string{"result"},
		)
		settlementLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_calculate_latency_seconds",
				Help:    "Final settlement latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		consumptionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consumption_query_total",
				Help: "Total consumption calculations by result",
			},
			[]string{"result"},
		)
		consumptionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "consumption_query_latency_seconds",
				Help:    "Consumption calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			receiptPreviewTotal,
			receiptPreviewLatency,
			receiptIssueTotal,
			receiptIssueLatency,
			receiptStatusTotal,
			receiptStatusLatency,
			receiptExportTotal,
			receiptExportLatency,
			settlementTotal,
			settlementLatency,
			consumptionTotal,
			consumptionLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReceiptPreview records preview latency and result.
func ObserveReceiptPreview(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if receiptPreviewTotal != nil {
		receiptPreviewTotal.WithLabelValues(result).Inc()
	}
	if receiptPreviewLatency != nil {
		receiptPreviewLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReceiptIssue records issue latency and result.
func ObserveReceiptIssue(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if receiptIssueTotal != nil {
		receiptIssueTotal.WithLabelValues(result).Inc()
	}
	if receiptIssueLatency != nil {
		receiptIssueLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReceiptStatusUpdate records status update latency and result.
func ObserveReceiptStatusUpdate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if receiptStatusTotal != nil {
		receiptStatusTotal.WithLabelValues(result).Inc()
	}
	if receiptStatusLatency != nil {
		receiptStatusLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveReceiptExport records export latency and result.
func ObserveReceiptExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if receiptExportTotal != nil {
		receiptExportTotal.WithLabelValues(format, result).Inc()
	}
	if receiptExportLatency != nil {
		receiptExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveSettlementCalculate records settlement latency and result.
func ObserveSettlementCalculate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if settlementTotal != nil {
		settlementTotal.WithLabelValues(result).Inc()
	}
	if settlementLatency != nil {
		settlementLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveConsumptionQuery records consumption calculation latency and result.
func ObserveConsumptionQuery(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if consumptionTotal != nil {
		consumptionTotal.WithLabelValues(result).Inc()
	}
	if consumptionLatency != nil {
		consumptionLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
