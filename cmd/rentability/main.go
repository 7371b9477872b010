package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cloud-ru/rentability-go/internal/calculations"
	"github.com/cloud-ru/rentability-go/internal/config"
	"github.com/cloud-ru/rentability-go/internal/logger"
	"github.com/cloud-ru/rentability-go/internal/scenario"
	"github.com/cloud-ru/rentability-go/internal/service"
	"github.com/cloud-ru/rentability-go/internal/tracing"
	"github.com/cloud-ru/rentability-go/internal/validators"
)

func main() {
	scenarioPath := flag.String("scenario", "", "файл сценария (.json, .yaml, .yml, .hjson)")
	verifyHash := flag.String("verify", "", "проверить сертификат: ожидаемый inputsHash")
	version := flag.String("version", calculations.CalculationVersion, "версия расчета для -verify")
	compact := flag.Bool("compact", false, "вывести JSON в одну строку")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: rentability -scenario file.yaml [-verify hash] [-compact]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout занят результатом расчета
	logger.InitLoggerWithWriter(cfg.LogLevel, os.Stderr)

	in, err := scenario.Load(*scenarioPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	svc := service.New(cfg, tracing.Tracer, cfg.CacheTTL)
	ctx := context.Background()

	var result interface{}
	if *verifyHash != "" {
		valid, err := svc.Verify(ctx, in, *verifyHash, *version)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		result = map[string]interface{}{"valid": valid, "inputsHash": *verifyHash, "calculationVersion": *version}
	} else {
		out, err := svc.Compute(ctx, in)
		if err != nil {
			var ve *validators.ValidationError
			if errors.As(err, &ve) {
				for _, f := range ve.Fields {
					fmt.Fprintf(os.Stderr, "%s: %s\n", f.Field, f.Message)
				}
				os.Exit(3)
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		result = out
	}

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
