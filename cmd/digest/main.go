package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Nephrolytics-ai/polyglot-digest/pkg/app"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/config"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/pipeline"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/rules"
	"github.com/Nephrolytics-ai/polyglot-digest/pkg/view"
	"github.com/spf13/pflag"
)

type output struct {
	Language string                 `json:"language"`
	Original model.GenerationResult `json:"original"`
	View     model.ViewResult       `json:"view"`
}

func main() {
	flags := pflag.NewFlagSet("digest", pflag.ExitOnError)
	audioPath := flags.String("audio", "", "audio file to transcribe and summarize")
	rulesText := flags.String("rules", "", "summary rules; defaults to the rules file, then the built-in rules")
	languages := flags.StringSlice("lang", nil, "languages to render after summarizing, in order (\"original\" restores the source)")
	listModels := flags.Bool("list-models", false, "list usable models and exit")
	configFile := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a .env file")
	flags.String("model", "", "model id")
	flags.String("log-level", "", "log level")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(
		config.WithConfigFile(*configFile),
		config.WithEnvFile(*envFile),
		config.WithFlag("gemini.default_model", flags.Lookup("model")),
		config.WithFlag("log.level", flags.Lookup("log-level")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, *audioPath, *rulesText, *languages, *listModels); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", model.UserMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, audioPath string, rulesText string, languages []string, listModels bool) error {
	log := logging.NewLogger(ctx)
	orchestrator, err := app.NewOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	if listModels {
		for _, m := range orchestrator.ListModels(ctx) {
			fmt.Printf("%s\t%s\n", m.ID, m.Name)
		}
		return nil
	}

	if strings.TrimSpace(audioPath) == "" {
		return fmt.Errorf("--audio is required")
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.TrimSpace(rulesText) == "" {
		if loaded, loadErr := rules.NewFileSource(cfg.Rules.Path).Load(ctx); loadErr == nil {
			rulesText = loaded
		} else {
			log.Debugf("no rules file, using default rules: %v", loadErr)
		}
	}

	session := pipeline.NewSession(orchestrator)
	_, err = session.Summarize(ctx,
		model.Upload{Filename: filepath.Base(audioPath), Body: file},
		model.GenerationRequest{Rules: rulesText, Model: cfg.Gemini.DefaultModel},
	)
	if err != nil {
		return err
	}

	for _, language := range languages {
		if _, err = session.SwitchLanguage(ctx, language, cfg.Gemini.DefaultModel); err != nil {
			return err
		}
	}

	snapshot := session.View().Snapshot()
	if !snapshot.HasResult {
		return view.ErrNoResult
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output{
		Language: snapshot.Language,
		Original: snapshot.Original,
		View:     snapshot.Current,
	})
}
