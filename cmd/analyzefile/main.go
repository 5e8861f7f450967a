package main

// Analyze a local file without the API or a database:
//   go run ./cmd/analyzefile -file contract.pdf -type fact_check -report html -out report.html

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"docaudit-backend/internal/analyses"
	"docaudit-backend/internal/bootstrap"
	"docaudit-backend/internal/extract"
	"docaudit-backend/internal/llm"
	"docaudit-backend/internal/reports"
	"docaudit-backend/internal/shared/config"
	"docaudit-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to a pdf, docx, doc or txt file")
	analysisType := flag.String("type", "contradiction", "Analysis type: contradiction, consistency or fact_check")
	reportType := flag.String("report", "", "Render a report instead of raw JSON: pdf, json or html")
	outPath := flag.String("out", "", "Write output to this path instead of stdout")
	printPrompt := flag.Bool("prompt", false, "Print the prompt and exit without calling the model")
	flag.StringVar(&cfg.AIProvider, "provider", cfg.AIProvider, "AI provider")
	flag.StringVar(&cfg.AIModel, "model", cfg.AIModel, "AI model")
	flag.Parse()

	log, err := telemetry.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		exitErr(err.Error())
	}
	defer func() { _ = log.Sync() }()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}
	kind, err := analyses.ParseAnalysisType(*analysisType)
	if err != nil {
		exitErr(err.Error())
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		exitErr(fmt.Sprintf("read file: %v", err))
	}
	fileName := filepath.Base(*filePath)
	mimeType := extract.NormalizeMimeType("", fileName)
	if !extract.IsSupported(mimeType) {
		exitErr(fmt.Sprintf("unsupported file type: %s", fileName))
	}

	ctx := context.Background()
	text, err := extract.ExtractTextFromBytes(ctx, data, mimeType)
	if err != nil {
		exitErr(fmt.Sprintf("extract text: %v", err))
	}
	prompt := llm.BuildPrompt(text, kind)
	if *printPrompt {
		writeOutput(*outPath, []byte(prompt))
		return
	}

	client, model, err := bootstrap.NewLLMClient(cfg, log)
	if err != nil {
		exitErr(err.Error())
	}
	log.Info("analyzefile.start", zap.String("file", fileName), zap.String("model", model), zap.Int("text_len", len(text)))

	result, err := analyses.NewAIClient(client, cfg.AITimeout).Analyze(ctx, prompt)
	if err != nil {
		exitErr(fmt.Sprintf("analyze: %v", err))
	}

	if strings.TrimSpace(*reportType) == "" {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			exitErr(err.Error())
		}
		writeOutput(*outPath, out)
		return
	}

	rtype, err := reports.ParseType(*reportType)
	if err != nil {
		exitErr(err.Error())
	}
	now := time.Now().UTC()
	rendered, err := reports.Render(reports.Input{
		DocumentName: fileName,
		AnalysisDate: now.Format("January 2, 2006"),
		AnalysisType: kind,
		Results:      result,
		UserEmail:    "Unknown",
		GeneratedAt:  now,
	}, rtype)
	if err != nil {
		exitErr(fmt.Sprintf("render report: %v", err))
	}
	writeOutput(*outPath, rendered.Body)
}

func writeOutput(path string, data []byte) {
	if strings.TrimSpace(path) == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		exitErr(fmt.Sprintf("write output: %v", err))
	}
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
