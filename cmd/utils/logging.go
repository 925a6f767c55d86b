package utils

import (
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

// SetupLogging installs the root logger configured by the logging flags.
// Terminal output is colored when stderr is a terminal.
func SetupLogging(ctx *cli.Context) error {
	var (
		output  io.Writer = os.Stderr
		handler slog.Handler
	)
	if ctx.Bool(LogJSONFlag.Name) {
		handler = log.JSONHandler(output)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
		handler = log.NewTerminalHandlerWithLevel(output, log.LevelTrace, useColor)
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(ctx.Int(VerbosityFlag.Name)))
	if err := glogger.Vmodule(ctx.String(VModuleFlag.Name)); err != nil {
		return err
	}
	log.SetDefault(log.NewLogger(glogger))
	return nil
}
