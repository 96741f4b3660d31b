package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/lepinkainen/rowterm/dispatch"
	"github.com/lepinkainen/rowterm/terminal"
	"github.com/lepinkainen/rowterm/types"
	"github.com/lepinkainen/rowterm/ui"
	"github.com/lepinkainen/rowterm/utils"
)

const maxLineSize = 1024 * 1024

// ReplayCmd streams existing log files through the row display, one row per file
type ReplayCmd struct {
	Files []string      `arg:"" name:"files" help:"Log files or directories to replay" type:"path"`
	Delay time.Duration `help:"Pause between replayed lines" default:"0s"`

	EngineFlags `embed:""`
}

func (cmd *ReplayCmd) Run(appCtx *types.AppContext) error {
	files, err := utils.ExpandPaths(cmd.Files)
	if err != nil {
		return fmt.Errorf("failed to expand directories: %w", err)
	}
	if len(files) == 0 {
		fmt.Println(ui.InfoStyle.Render("No log files to replay."))
		return nil
	}
	if len(files) > terminal.MaxLines {
		return fmt.Errorf("too many files to replay: %d (max %d)", len(files), terminal.MaxLines)
	}

	cfg, err := cmd.Resolve(nil)
	if err != nil {
		return err
	}

	workers := make([]dispatch.Worker, len(files))
	for i, path := range files {
		workers[i] = replayWorker(path, cmd.Delay)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(ui.Header("rowterm replay", appCtx.VersionOrDefault()))
	fmt.Println(ui.InfoStyle.Render(fmt.Sprintf("Replaying %d files...", len(files))))

	results, err := runRows(ctx, appCtx, cfg, workers, &cmd.EngineFlags)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("❌ %s: %v", files[r.Offset], r.Err)))
		}
	}
	processed, failed := summarize(results)
	fmt.Println(ui.Summary(processed, failed))
	return nil
}

// replayWorker sends every line of path to its row and returns the line count
func replayWorker(path string, delay time.Duration) dispatch.Worker {
	return func(ctx context.Context, log *zap.Logger) (int, error) {
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		lines := 0
		for scanner.Scan() {
			if err := pause(ctx, delay); err != nil {
				return lines, err
			}
			log.Info(scanner.Text())
			lines++
		}
		if err := scanner.Err(); err != nil {
			return lines, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return lines, nil
	}
}
