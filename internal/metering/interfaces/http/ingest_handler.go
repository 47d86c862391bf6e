package meteringhttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	metering "rentdesk/internal/metering/domain"
)

// ReadingWriter appends readings to a meter's history.
type ReadingWriter interface {
	Append(ctx context.Context, reading *metering.Reading) error
}

// MeterGetter resolves a meter by id.
type MeterGetter interface {
	Get(ctx context.Context, id string) (*metering.Meter, error)
}

// IngestHandler accepts new meter readings from operators.
type IngestHandler struct {
	readings ReadingWriter
	meters   MeterGetter
	logger   *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(readings ReadingWriter, meters MeterGetter, logger *log.Logger) (*IngestHandler, error) {
	if readings == nil {
		return nil, errors.New("reading ingest: nil reading writer")
	}
	if meters == nil {
		return nil, errors.New("reading ingest: nil meter getter")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{readings: readings, meters: meters, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/readings.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("reading ingest: read body error: %v", err)
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Printf("reading ingest: decode error: %v", err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	reading, err := req.toReading()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meter, err := h.meters.Get(r.Context(), reading.MeterID)
	if err != nil {
		h.logger.Printf("reading ingest: meter lookup error: %v", err)
		http.Error(w, "meter lookup error", http.StatusInternalServerError)
		return
	}
	if meter == nil {
		http.Error(w, metering.ErrMeterNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := h.readings.Append(r.Context(), &reading); err != nil {
		if errors.Is(err, metering.ErrNegativeReading) || errors.Is(err, metering.ErrInvalidReadingDate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Printf("reading ingest: insert error: %v", err)
		http.Error(w, "insert error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": reading.ID})
}

type ingestRequest struct {
	ID      string  `json:"id"`
	MeterID string  `json:"meter_id"`
	Value   float64 `json:"value"`
	Date    string  `json:"date"`
}

func (r ingestRequest) toReading() (metering.Reading, error) {
	if r.ID == "" || r.MeterID == "" {
		return metering.Reading{}, errors.New("missing id/meter_id")
	}
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return metering.Reading{}, errors.New("date must be YYYY-MM-DD")
	}
	return metering.Reading{
		ID:      r.ID,
		MeterID: r.MeterID,
		Value:   r.Value,
		Date:    date.UTC(),
	}, nil
}
