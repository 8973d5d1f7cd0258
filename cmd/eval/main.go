package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"lead-extract-eval/internal/config"
	"lead-extract-eval/internal/dataset"
	"lead-extract-eval/internal/extractor"
	"lead-extract-eval/internal/logger"
	"lead-extract-eval/internal/normalize"
	"lead-extract-eval/internal/report"
	"lead-extract-eval/internal/runner"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "lead-extract-eval").Info("starting evaluation")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	convs, err := dataset.LoadConversations(cfg.DatasetPath)
	if err != nil {
		log.WithError(err).WithField("dataset_path", cfg.DatasetPath).Fatal("failed to load dataset")
	}
	gt, err := dataset.LoadGroundTruth(cfg.GroundTruthPath)
	if err != nil {
		log.WithError(err).WithField("ground_truth_path", cfg.GroundTruthPath).Fatal("failed to load ground truth")
	}
	log.WithField("conversations", len(convs)).WithField("labelled", len(gt)).Info("dataset loaded")

	var variants []runner.Variant
	for _, p := range cfg.Prompts {
		tmpl, err := extractor.LoadPromptTemplate(p.Path)
		if err != nil {
			log.WithError(err).WithField("prompt", p.Name).Fatal("failed to load prompt")
		}
		for _, m := range cfg.Models {
			variants = append(variants, runner.Variant{Model: m, PromptName: p.Name, Prompt: tmpl})
		}
	}

	var ex extractor.Extractor
	if cfg.UseMockLLM {
		log.Info("mock LLM mode ON")
		ex = extractor.NewMock()
	} else {
		client, err := extractor.NewClient(extractor.ClientConfig{
			GatewayURL:   cfg.LLMGatewayURL,
			APIKey:       cfg.LLMAPIKey,
			HTTPTimeout:  cfg.LLMTimeout(),
			MaxRetryTime: cfg.LLMMaxRetry(),
		}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to build llm client")
		}
		ex = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(ex, convs, gt, normalize.Options{TargetYear: cfg.TargetVisitYear}, log)
	reports, state, err := r.EvaluateAll(ctx, variants)
	if err != nil {
		log.WithError(err).Warn("evaluation interrupted, reporting partial results")
	}

	logSummaries(log, reports)
	log.WithField("run_id", state.RunID).
		WithField("calls", state.Calls).
		WithField("extraction_errors", state.ExtractionErrors).
		WithField("total_tokens", state.Usage.TotalTokens).
		WithField("latency_ms", state.Latency.Milliseconds()).
		Info("run complete")

	if err := report.WriteWorkbook(cfg.ReportPath, reports); err != nil {
		log.WithError(err).Fatal("failed to write report")
	}
	log.WithField("report_path", cfg.ReportPath).Info("report written")
}

// logSummaries prints each variant's metrics as indented JSON.
func logSummaries(log *logger.Logger, reports []runner.ModelReport) {
	for _, rep := range reports {
		entry := log.WithField("model", rep.Model).WithField("prompt", rep.Prompt)
		out, err := json.MarshalIndent(rep.Summary, "", "  ")
		if err != nil {
			log.WithError(err).WithField("model", rep.Model).WithField("prompt", rep.Prompt).Warn("failed to encode summary")
			continue
		}
		entry.Info("final metrics\n" + string(out))
	}
}
