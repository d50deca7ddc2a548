package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/pflag"

	cectx "github.com/easyops/contextengine/pkg/context"
)

func runAssemble(ctx context.Context, args []string, stdout io.Writer) error {
	var (
		configPath string
		query      string
		projectID  string
		maxTokens  int
		asMessages bool
	)

	fs := pflag.NewFlagSet("assemble", pflag.ContinueOnError)
	fs.StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	fs.StringVarP(&query, "query", "q", "", "query text")
	fs.StringVarP(&projectID, "project", "p", "", "project scope")
	fs.IntVarP(&maxTokens, "max-tokens", "m", 0, "total token budget (default engine.default_max_tokens)")
	fs.BoolVar(&asMessages, "messages", false, "print chat messages instead of the assembled context")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if !fs.Changed("max-tokens") {
		maxTokens = a.cfg.Engine.DefaultMaxTokens
	}
	q := cectx.Query{Text: query, ProjectID: projectID, MaxTokens: maxTokens}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if asMessages {
		messages, _, err := a.assembler.BuildMessages(ctx, q)
		if err != nil {
			return err
		}
		return enc.Encode(messages)
	}

	result, err := a.assembler.Assemble(ctx, q)
	if err != nil {
		return err
	}
	return enc.Encode(result)
}
