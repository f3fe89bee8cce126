package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/davidmdm/x/xcontext"

	"github.com/davidmdm/kdeploy/internal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if internal.IsWarning(err) {
			return
		}
		os.Exit(1)
	}
}

//go:embed cmd_help.txt
var rootHelp string

func init() {
	rootHelp = strings.TrimSpace(internal.Colorize(rootHelp))
}

func run() error {
	ctx, done := xcontext.WithSignalCancelation(context.Background(), syscall.SIGINT)
	defer done()

	settings, err := LoadGlobalSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings from environment: %w", err)
	}

	RegisterGlobalFlags(flag.CommandLine, &settings)

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), rootHelp)
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}

	flag.Parse()

	if len(flag.Args()) == 0 {
		flag.Usage()
		return fmt.Errorf("no command provided")
	}

	subcmdArgs := flag.Args()[1:]

	switch cmd := flag.Arg(0); cmd {
	case "apply", "up":
		{
			params, err := GetApplyParams(settings, stdinSource(), subcmdArgs)
			if err != nil {
				return err
			}
			return Apply(ctx, *params)
		}
	case "delete", "down":
		{
			params, err := GetDeleteParams(settings, subcmdArgs)
			if err != nil {
				return err
			}
			return Delete(ctx, *params)
		}
	case "render":
		{
			params, err := GetRenderParams(settings, stdinSource(), subcmdArgs)
			if err != nil {
				return err
			}
			return Render(ctx, *params)
		}
	case "version":
		{
			return Version(ctx)
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// stdinSource returns stdin when something is piped into the process.
func stdinSource() io.Reader {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return os.Stdin
}
