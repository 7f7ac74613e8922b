package prediction

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/ckd-screening/pkg/common/logger"
	"github.com/synaptica-ai/ckd-screening/pkg/common/models"
	"github.com/synaptica-ai/ckd-screening/pkg/risk"
)

const healthMessage = "CKD API is running!"

type HTTPHandler struct {
	service     *Service
	maxBody     int64
	recentLimit int
}

func NewHTTPHandler(service *Service, maxBody int64, recentLimit int) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody, recentLimit: recentLimit}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/predict", h.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/predictions", h.handleRecent).Methods(http.MethodGet)
	router.HandleFunc("/predictions/{id:[0-9]+}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
}

func (h *HTTPHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	params, err := decodeParameters(r.Body)
	if err != nil {
		h.writeError(w, &Error{Kind: KindInput, Err: err})
		return
	}

	res, err := h.service.Predict(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	factors := res.Assessment.Factors
	if factors == nil {
		factors = []string{}
	}
	writeJSON(w, http.StatusOK, models.PredictionResponse{
		Success:     true,
		Prediction:  res.Assessment.Message,
		RiskLevel:   string(res.Assessment.Level),
		RiskFactors: factors,
		RecordID:    res.RecordID,
	})
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Message: healthMessage})
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := h.recentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	recs, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid record id"})
		return
	}

	rec, err := h.service.Get(r.Context(), uint(id))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, today, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatsResponse{Totals: totals, Today: today})
}

// decodeParameters reads a JSON object body. An empty body or null is an empty submission.
func decodeParameters(body io.Reader) (risk.Parameters, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var params risk.Parameters
	if err := dec.Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			return risk.Parameters{}, nil
		}
		return nil, err
	}
	if params == nil {
		params = risk.Parameters{}
	}
	return params, nil
}

// writeError is the only place error kinds become status codes.
func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	status := statusFor(kind)

	entry := logger.Log.WithError(err).WithField("kind", kind)
	if status >= http.StatusInternalServerError {
		entry.Error("prediction request failed")
	} else {
		entry.Warn("prediction request rejected")
	}

	writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	default:
		// input and persistence failures are both reported as 500
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v before the status line goes out, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
		buf.Reset()
		json.NewEncoder(&buf).Encode(models.ErrorResponse{Error: err.Error()})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Log.WithError(err).Warn("failed to write response")
	}
}
