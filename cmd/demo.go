package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lepinkainen/rowterm/config"
	"github.com/lepinkainen/rowterm/dispatch"
	"github.com/lepinkainen/rowterm/types"
	"github.com/lepinkainen/rowterm/ui"
)

// DemoCmd runs simulated workers so the row display can be seen in action
type DemoCmd struct {
	Workers  int           `help:"Number of simulated workers" default:"10" short:"w"`
	TotalMin int           `help:"Smallest random total per worker" default:"4000" name:"total-min"`
	TotalMax int           `help:"Largest random total per worker" default:"10000" name:"total-max"`
	Delay    time.Duration `help:"Pause between processed items" default:"0s"`
	Names    bool          `help:"Log free text lines instead of progress counts"`

	EngineFlags `embed:""`
}

// defaults returns the configuration the demo workers are written against
func (cmd *DemoCmd) defaults() *config.File {
	if cmd.Names {
		return &config.File{
			IDRegex:   `^processor is (?P<value>.*)$`,
			TextRegex: `^process.*$`,
		}
	}
	return &config.File{
		IDRegex: `^processor id (?P<value>.*)$`,
		ProgressBar: &config.ProgressBar{
			Total:      config.ParseTotal(`^processing total of (?P<value>\d+)$`),
			CountRegex: `^processed (?P<value>\d+)$`,
			MaxTotal:   cmd.TotalMax,
		},
	}
}

func (cmd *DemoCmd) Run(appCtx *types.AppContext) error {
	if cmd.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", cmd.Workers)
	}
	if cmd.TotalMin <= 0 || cmd.TotalMax < cmd.TotalMin {
		return fmt.Errorf("invalid total range %d-%d", cmd.TotalMin, cmd.TotalMax)
	}

	cfg, err := cmd.Resolve(cmd.defaults())
	if err != nil {
		return err
	}

	workers := make([]dispatch.Worker, cmd.Workers)
	for i := range workers {
		total := cmd.TotalMin + rand.Intn(cmd.TotalMax-cmd.TotalMin+1)
		id := strings.Split(uuid.NewString(), "-")[0]
		if cmd.Names {
			workers[i] = textWorker(id, total, cmd.Delay)
		} else {
			workers[i] = progressWorker(id, total, cmd.Delay)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(ui.Header("rowterm demo", appCtx.VersionOrDefault()))
	fmt.Println(ui.InfoStyle.Render(fmt.Sprintf("Processing with %d workers...", cmd.Workers)))

	results, err := runRows(ctx, appCtx, cfg, workers, &cmd.EngineFlags)
	if err != nil {
		return err
	}

	processed, failed := summarize(results)
	fmt.Println(ui.Summary(processed, failed))
	return nil
}

// progressWorker logs an identifier, a total and then every processed item
func progressWorker(id string, total int, delay time.Duration) dispatch.Worker {
	return func(ctx context.Context, log *zap.Logger) (int, error) {
		log.Debug(fmt.Sprintf("processor id %s", id))
		log.Debug(fmt.Sprintf("processing total of %d", total))
		for n := 1; n <= total; n++ {
			if err := pause(ctx, delay); err != nil {
				return n - 1, err
			}
			log.Debug(fmt.Sprintf("processed %d", n))
		}
		return total, nil
	}
}

// textWorker logs free text lines for rows without a progress bar
func textWorker(id string, total int, delay time.Duration) dispatch.Worker {
	return func(ctx context.Context, log *zap.Logger) (int, error) {
		log.Debug(fmt.Sprintf("processor is %s", id))
		for n := 1; n <= total; n++ {
			if err := pause(ctx, delay); err != nil {
				return n - 1, err
			}
			log.Debug(fmt.Sprintf("processing item %s-%04d", id, n))
		}
		log.Debug("processing completed")
		return total, nil
	}
}

// pause waits for delay, returning early when ctx is cancelled
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
