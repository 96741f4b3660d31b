package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lepinkainen/rowterm/config"
	"github.com/lepinkainen/rowterm/dispatch"
	"github.com/lepinkainen/rowterm/logging"
	"github.com/lepinkainen/rowterm/terminal"
	"github.com/lepinkainen/rowterm/types"
	"github.com/lepinkainen/rowterm/utils"
)

// EngineFlags are the row display settings shared by every command.
// Flags override values read from --config.
type EngineFlags struct {
	Config     string `help:"YAML configuration file" type:"existingfile" short:"c"`
	IDRegex    string `help:"Pattern with a 'value' group naming each row" name:"id-regex"`
	IDJustify  bool   `help:"Right-justify row identifiers into a fixed column" name:"id-justify"`
	IDWidth    int    `help:"Identifier column width (1-30)" name:"id-width"`
	TextRegex  string `help:"Only display plain lines matching this pattern" name:"text-regex"`
	Total      string `help:"Progress total: an integer or a pattern with a 'value' group"`
	CountRegex string `help:"Pattern with a 'value' group carrying the progress count" name:"count-regex"`
	MaxTotal   int    `help:"Largest expected total, used to align counts" name:"max-total"`
	LogFile    string `help:"Also append every worker line to this file" name:"log-file" type:"path"`
	Plain      bool   `help:"Disable row rendering and show a single progress bar on stderr"`
}

// Resolve builds the engine configuration from defaults, the config file and
// flag overrides, in that order.
func (f *EngineFlags) Resolve(defaults *config.File) (*terminal.Config, error) {
	file := defaults
	if f.Config != "" {
		loaded, err := config.Load(f.Config)
		if err != nil {
			return nil, err
		}
		file = loaded
	}
	if file == nil {
		file = &config.File{}
	}

	if f.IDRegex != "" {
		file.IDRegex = f.IDRegex
	}
	if f.IDJustify {
		file.IDJustify = true
	}
	if f.IDWidth != 0 {
		file.IDWidth = f.IDWidth
	}
	if f.TextRegex != "" {
		file.TextRegex = f.TextRegex
	}
	if f.Total != "" || f.CountRegex != "" || f.MaxTotal != 0 {
		if file.ProgressBar == nil {
			file.ProgressBar = &config.ProgressBar{}
		}
		if f.Total != "" {
			file.ProgressBar.Total = config.ParseTotal(f.Total)
		}
		if f.CountRegex != "" {
			file.ProgressBar.CountRegex = f.CountRegex
		}
		if f.MaxTotal != 0 {
			file.ProgressBar.MaxTotal = f.MaxTotal
		}
	}

	return file.Terminal(), nil
}

// runRows draws one row per worker and runs them to completion
func runRows(ctx context.Context, appCtx *types.AppContext, cfg *terminal.Config, workers []dispatch.Worker, flags *EngineFlags) ([]dispatch.Result, error) {
	log := appCtx.Log()
	plain := flags.Plain || !utils.IsTerminal(os.Stdout)

	opts := []terminal.Option{terminal.WithLogger(log.Named("terminal"))}
	if plain {
		opts = append(opts, terminal.Headless())
	}
	trmnl, err := terminal.New(len(workers), cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal: %w", err)
	}

	dispatchOpts := []dispatch.Option{dispatch.WithLogger(log.Named("dispatch"))}
	if plain {
		bar := progressbar.NewOptions(len(workers),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("workers"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish() //nolint:errcheck
		dispatchOpts = append(dispatchOpts, dispatch.WithResultHook(func(dispatch.Result) {
			_ = bar.Add(1)
		}))
	}

	var file zapcore.WriteSyncer
	if flags.LogFile != "" {
		ws, closeFn, err := logging.OpenFile(flags.LogFile)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := closeFn(); err != nil {
				log.Warn("failed to close log file", zap.String("path", flags.LogFile), zap.Error(err))
			}
		}()
		file = ws
	}

	d := dispatch.New(trmnl, dispatchOpts...)
	d.Start()
	results := d.Run(ctx, workers, file)
	d.Finish()

	return results, nil
}

// summarize totals successful worker values and counts failures
func summarize(results []dispatch.Result) (processed, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		processed += r.Value
	}
	return processed, failed
}
