package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"lead-extract-eval/internal/aggregator"
	"lead-extract-eval/internal/compare"
	"lead-extract-eval/internal/config"
	"lead-extract-eval/internal/logger"
	"lead-extract-eval/internal/normalize"
	"lead-extract-eval/internal/types"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "lead-extract-eval-api").Info("starting service")

	cfg, err := config.FromEnv()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	opts := normalize.Options{TargetYear: cfg.TargetVisitYear}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(opts, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

type compareRequest struct {
	Prediction  types.RawRecord `json:"prediction"`
	GroundTruth types.RawRecord `json:"ground_truth"`
}

type compareResponse struct {
	Prediction types.CanonicalRecord  `json:"prediction"`
	Expected   types.CanonicalRecord  `json:"expected"`
	Result     map[string]bool        `json:"result"`
	Fields     types.ComparisonResult `json:"fields"`
	Correct    int                    `json:"correct"`
}

type metricsRequest struct {
	Results []map[string]bool `json:"results"`
}

func newMux(opts normalize.Options, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	// compare one prediction against one ground-truth record
	mux.HandleFunc("/compare", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "compare")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithField("error", err.Error()).Warn("bad compare body")
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}

		pred := normalize.Prediction(req.Prediction, opts)
		gt := normalize.GroundTruth(req.GroundTruth, opts)
		res := compare.Compare(pred, gt)
		reqLog.WithField("correct", res.Correct()).Info("compared")

		writeJSON(w, reqLog, compareResponse{
			Prediction: pred,
			Expected:   gt,
			Result:     res.AsMap(),
			Fields:     res,
			Correct:    res.Correct(),
		})
	})

	// aggregate a batch of comparison results
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "metrics")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req metricsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reqLog.WithField("error", err.Error()).Warn("bad metrics body")
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}

		acc := aggregator.NewAccumulator()
		for _, m := range req.Results {
			acc.Add(fromMap(m))
		}
		writeJSON(w, reqLog, acc.Summary())
	})

	return mux
}

// fromMap orders a field -> match map canonically; unknown fields follow
// in no particular order.
func fromMap(m map[string]bool) types.ComparisonResult {
	out := make(types.ComparisonResult, 0, len(m))
	seen := map[string]bool{}
	for _, f := range types.CanonicalFields {
		if v, ok := m[f]; ok {
			out = append(out, types.FieldMatch{Field: f, Match: v})
			seen[f] = true
		}
	}
	for f, v := range m {
		if !seen[f] {
			out = append(out, types.FieldMatch{Field: f, Match: v})
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}
