package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/rowterm/cmd"
	"github.com/lepinkainen/rowterm/logging"
	"github.com/lepinkainen/rowterm/types"
)

var Version = "dev"

type CLI struct {
	Debug bool `help:"Enable debug logging on stderr"`

	Demo    cmd.DemoCmd    `cmd:"" help:"Run simulated workers, one row each"`
	Replay  cmd.ReplayCmd  `cmd:"" help:"Replay log files, one row per file"`
	Version cmd.VersionCmd `cmd:"" help:"Show version information"`
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("rowterm"),
		kong.Description("Render the progress of concurrent workers as live terminal rows."),
		kong.UsageOnError(),
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger, err := logging.New(cli.Debug)
	ctx.FatalIfErrorf(err)
	defer logger.Sync() //nolint:errcheck

	err = ctx.Run(&types.AppContext{Version: Version, Logger: logger})
	ctx.FatalIfErrorf(err)
}
