package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	apihttp "rentdesk/internal/api/http"
	"rentdesk/internal/audit"
	billingapp "rentdesk/internal/billing/application"
	billingrepo "rentdesk/internal/billing/infrastructure/postgres"
	billinginterfaces "rentdesk/internal/billing/interfaces"
	"rentdesk/internal/config"
	leasingapp "rentdesk/internal/leasing/application"
	leasingrepo "rentdesk/internal/leasing/infrastructure/postgres"
	leasinghttp "rentdesk/internal/leasing/interfaces/http"
	meteringapp "rentdesk/internal/metering/application"
	meteringrepo "rentdesk/internal/metering/infrastructure/postgres"
	meteringhttp "rentdesk/internal/metering/interfaces/http"
	"rentdesk/internal/observability/metrics"
	settlementapp "rentdesk/internal/settlement/application"
	settlementinterfaces "rentdesk/internal/settlement/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	contractRepo := leasingrepo.NewContractRepository(db)
	paymentRepo := leasingrepo.NewPaymentRepository(db)
	extraChargeRepo := leasingrepo.NewExtraChargeRepository(db)
	unitRepo := leasingrepo.NewUnitRepository(db)
	meterRepo := meteringrepo.NewMeterRepository(db)
	readingRepo := meteringrepo.NewReadingRepository(db)
	receiptRepo := billingrepo.NewReceiptRepository(db)

	calculator, err := meteringapp.NewConsumptionCalculator(meterRepo, readingRepo, unitRepo, meteringapp.FallbackRates{
		LightPerUnit: cfg.FallbackRates.LightPerUnit,
		WaterPerUnit: cfg.FallbackRates.WaterPerUnit,
	})
	if err != nil {
		logger.Fatalf("consumption calculator error: %v", err)
	}

	receiptService, err := billingapp.NewReceiptService(receiptRepo, contractRepo, paymentRepo, extraChargeRepo, calculator, systemClock{})
	if err != nil {
		logger.Fatalf("receipt service error: %v", err)
	}
	settlementService, err := settlementapp.NewSettlementService(contractRepo, paymentRepo, cfg.OverstayDivisor)
	if err != nil {
		logger.Fatalf("settlement service error: %v", err)
	}
	contractService, err := leasingapp.NewContractService(contractRepo)
	if err != nil {
		logger.Fatalf("contract service error: %v", err)
	}

	receiptHandler, err := billinginterfaces.NewReceiptHandler(receiptService, auditRepo)
	if err != nil {
		logger.Fatalf("receipt handler error: %v", err)
	}
	settlementHandler, err := settlementinterfaces.NewSettlementHandler(settlementService, auditRepo)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}
	contractHandler, err := leasinghttp.NewContractHandler(contractService, auditRepo)
	if err != nil {
		logger.Fatalf("contract handler error: %v", err)
	}
	consumptionHandler, err := meteringhttp.NewConsumptionHandler(calculator)
	if err != nil {
		logger.Fatalf("consumption handler error: %v", err)
	}
	ingestHandler, err := meteringhttp.NewIngestHandler(readingRepo, meterRepo, logger)
	if err != nil {
		logger.Fatalf("reading ingest handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/contracts", contractHandler)
	mux.Handle("/api/v1/contracts/", contractsDispatcher(contractHandler, receiptHandler, settlementHandler))
	mux.Handle("/api/v1/receipts/pending", receiptHandler)
	mux.Handle("/api/v1/receivables", apihttp.NewReceivablesHandler(db, cfg.ReceivablesPageCap))
	mux.Handle("/api/v1/units/", consumptionHandler)
	mux.Handle("/api/v1/readings", ingestHandler)
	mux.Handle("/api/v1/stats", apihttp.NewPortfolioStatsHandler(db))
	mux.Handle("/api/v1/exports/receivables.csv", apihttp.NewExportReceivablesCSVHandler(db, cfg.ReceivablesPageCap))
	mux.Handle("/api/v1/exports/receivables.xlsx", apihttp.NewExportReceivablesXLSXHandler(db, cfg.ReceivablesPageCap))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

// contractsDispatcher routes /api/v1/contracts/{id}/... by its trailing segment.
func contractsDispatcher(contracts, receipts, settlements http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/contracts/")
		parts := strings.Split(rest, "/")
		if len(parts) < 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch parts[1] {
		case "close":
			contracts.ServeHTTP(w, r)
		case "receipt":
			receipts.ServeHTTP(w, r)
		case "settlement":
			settlements.ServeHTTP(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
