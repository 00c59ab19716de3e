// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// InvoZip — Standalone Harvest Command
//
// CLI tool that runs one invoice harvest against a Gmail mailbox using a
// raw access token, without the API server, database, or S3. Useful for
// debugging keyword queries and inspecting what a date range yields.
//
// Usage:
//
//	go run ./cmd/harvest/ --token <access-token> --start 2026-07-01 --end 2026-07-31 [--out ./harvest]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/invozip/backend/internal/gmail"
	"github.com/invozip/backend/internal/harvest"
)

func main() {
	// Structured JSON logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// --- CLI Flags ---
	tokenFlag := flag.String("token", "", "Gmail API access token (required)")
	startFlag := flag.String("start", "", "Start date, YYYY-MM-DD (required)")
	endFlag := flag.String("end", "", "End date inclusive, YYYY-MM-DD (required)")
	outFlag := flag.String("out", "./harvest-out", "Output directory")
	maxMessagesFlag := flag.Int("max-messages", 100, "Maximum messages to process")
	maxJSONFlag := flag.Int("max-json", 1000, "Soft cap on JSON documents saved")
	keywordsFlag := flag.String("keywords", "", "Comma-separated extra subject keywords")
	includeSpamFlag := flag.Bool("include-spam", false, "Search spam and trash too")
	flag.Parse()

	if *tokenFlag == "" || *startFlag == "" || *endFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: --token, --start and --end are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	start, err := time.ParseInLocation("2006-01-02", *startFlag, time.UTC)
	if err != nil {
		slog.Error("invalid --start date", "value", *startFlag, "error", err)
		os.Exit(1)
	}
	end, err := time.ParseInLocation("2006-01-02", *endFlag, time.UTC)
	if err != nil {
		slog.Error("invalid --end date", "value", *endFlag, "error", err)
		os.Exit(1)
	}
	if start.After(end) {
		slog.Error("--start must not be after --end")
		os.Exit(1)
	}

	var custom []string
	for _, kw := range strings.Split(*keywordsFlag, ",") {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			custom = append(custom, kw)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := gmail.NewClientWithToken(ctx, *tokenFlag, "")

	harvester := harvest.New(harvest.Config{Client: client})

	result, err := harvester.Run(ctx, harvest.Request{
		UserID:         "cli",
		BatchLabel:     start.Format("2006-01"),
		StartEpoch:     start.Unix(),
		EndEpoch:       end.AddDate(0, 0, 1).Unix(),
		MaxMessages:    *maxMessagesFlag,
		MaxJSON:        *maxJSONFlag,
		CustomKeywords: custom,
		IncludeSpam:    *includeSpamFlag,
		BaseDir:        *outFlag,
	})
	if err != nil {
		slog.Error("harvest failed", "error", err)
		os.Exit(1)
	}

	// --- Summary ---
	slog.Info("harvest complete",
		"output_dir", result.OutputDir,
		"messages_found", result.MessagesFound,
		"processed", result.Processed,
		"files_saved", result.FilesSaved,
		"pdf_count", result.PDFCount,
		"json_count", result.JSONCount,
	)

	for _, name := range result.SavedFiles {
		slog.Info("saved file", "name", name)
	}
}
