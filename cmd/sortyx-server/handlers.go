package main

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sortyx/sortyx-backend/internal/filehandler"
	"github.com/sortyx/sortyx-backend/internal/metrics"
	"github.com/sortyx/sortyx-backend/internal/push"
	"github.com/sortyx/sortyx-backend/internal/sensor"
	"github.com/sortyx/sortyx-backend/internal/stats"
	"github.com/sortyx/sortyx-backend/internal/token"
	"github.com/sortyx/sortyx-backend/internal/vision"
	"github.com/sortyx/sortyx-backend/internal/waste"
)

// maxUploadBytes bounds the multipart upload size for /classify.
const maxUploadBytes = 15 << 20 // 15 MiB

// server holds the request-serving dependencies. All shared state lives in
// the explicitly owned trackers, never in package globals.
type server struct {
	classifier *vision.Classifier
	encoder    *token.Encoder
	stats      *stats.Tracker
	hub        *push.Hub
	bins       *sensor.Registry
}

func newServer(c *vision.Classifier, e *token.Encoder, t *stats.Tracker, h *push.Hub, b *sensor.Registry) *server {
	return &server{classifier: c, encoder: e, stats: t, hub: h, bins: b}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/classify", s.handleClassify)
	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/sensor/update", s.handleSensorUpdate)
	mux.HandleFunc("/bins/status", s.handleBinStatus)
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"timestamp":         time.Now().Format(time.RFC3339),
		"gemini_configured": s.classifier.Online(),
	})
}

// classificationPayload is the classification section of the /classify
// response, combining the normalized record with its bin attributes.
type classificationPayload struct {
	Category     waste.Category `json:"category"`
	CategoryName string         `json:"category_name"`
	Description  string         `json:"description"`
	BinColor     string         `json:"bin_color"`
	DisposalCode string         `json:"disposal_code"`
	ItemName     string         `json:"item_name"`
	Confidence   float64        `json:"confidence"`
	Reasoning    string         `json:"reasoning"`
	Outcome      string         `json:"outcome"`
}

type classifyResponse struct {
	Success        bool                  `json:"success"`
	Classification classificationPayload `json:"classification"`
	QRCode         string                `json:"qr_code,omitempty"`
	QRError        string                `json:"qr_error,omitempty"`
	WasteData      token.Token           `json:"waste_data"`
	Timestamp      string                `json:"timestamp"`
	ProcessingTime float64               `json:"processing_time"`
}

// handleClassify is the main pipeline: upload -> Gemini -> normalize ->
// token -> stats -> broadcast. A classification response is always produced;
// only boundary validation (non-image upload) rejects the request, and a QR
// render failure is reported alongside the usable recommendation rather
// than failing it.
func (s *server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file upload: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	mimeType, err := filehandler.SniffImage(data)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Capture metadata is log-only; most uploads won't have any.
	if meta, err := filehandler.ExtractCaptureMetadata(data); err == nil {
		evt := log.Info().Str("camera_make", meta.CameraMake).Str("camera_model", meta.CameraModel)
		if meta.HasDate {
			evt = evt.Time("date_taken", meta.DateTaken)
		}
		evt.Msg("Upload capture metadata")
	}

	data, mimeType = filehandler.PrepareImage(data, mimeType)

	raw, err := s.classifier.Classify(r.Context(), data, mimeType)
	if err != nil {
		log.Error().Err(err).Msg("Gemini classification failed, degrading to safe default")
		raw = vision.FailureResponse(err)
	}

	rec, outcome := waste.Normalize(raw)
	info := rec.Category.Info()

	tok := s.encoder.Encode(rec)
	qrCode, qrErr := token.RenderDataURL(tok)

	s.stats.Record(rec.Category)
	s.hub.Broadcast(push.Event{Type: push.EventClassificationComplete, Data: map[string]any{
		"category":      rec.Category,
		"item_name":     rec.ItemLabel,
		"bin_color":     info.BinColor,
		"disposal_code": info.DisposalCode,
		"confidence":    rec.Confidence,
	}})

	elapsed := time.Since(start)
	metrics.New("classify").
		Dimension("Category", string(rec.Category)).
		Dimension("Outcome", outcome.String()).
		Duration("ClassifyLatencyMs", elapsed).
		Count("Classifications").
		Property("confidence", rec.Confidence).
		Flush()

	resp := classifyResponse{
		Success: true,
		Classification: classificationPayload{
			Category:     rec.Category,
			CategoryName: info.Name,
			Description:  info.Description,
			BinColor:     info.BinColor,
			DisposalCode: info.DisposalCode,
			ItemName:     rec.ItemLabel,
			Confidence:   rec.Confidence,
			Reasoning:    rec.Rationale,
			Outcome:      outcome.String(),
		},
		QRCode:         qrCode,
		WasteData:      tok,
		Timestamp:      time.Now().Format(time.RFC3339),
		ProcessingTime: elapsed.Seconds(),
	}
	if qrErr != nil {
		// No safe visual substitute exists; tell the caller why the
		// scannable image is missing.
		log.Error().Err(qrErr).Str("token_id", tok.ID).Msg("Tracking token render failed")
		resp.QRError = qrErr.Error()
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	categories := make([]map[string]any, 0, len(waste.All))
	for _, c := range waste.All {
		info := c.Info()
		categories = append(categories, map[string]any{
			"key":           c,
			"name":          info.Name,
			"description":   info.Description,
			"bin_color":     info.BinColor,
			"disposal_code": info.DisposalCode,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	snap := s.stats.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"total_classifications": snap.Total,
		"category_breakdown":    snap.Counts,
		"timestamp":             time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleSensorUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var reading sensor.Reading
	if err := decodeJSON(r, &reading); err != nil {
		httpError(w, http.StatusBadRequest, "invalid sensor payload: "+err.Error())
		return
	}
	if err := reading.Validate(); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := s.bins.Process(reading)
	s.hub.Broadcast(push.Event{Type: push.EventSensorUpdate, Data: map[string]any{
		"sensor_id": reading.SensorID,
		"bin_level": reading.BinLevel,
		"status":    status.Status,
	}})

	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"bin_status": status,
	})
}

func (s *server) handleBinStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"bins":      s.bins.List(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
