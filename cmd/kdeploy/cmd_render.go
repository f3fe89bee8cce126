package main

import (
	"cmp"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/davidmdm/kdeploy/internal"
	"github.com/davidmdm/kdeploy/internal/k8s"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

type RenderParams struct {
	GlobalSettings
	SpecPath string
	Input    io.Reader
	Out      string
}

//go:embed cmd_render_help.txt
var renderHelp string

func init() {
	renderHelp = strings.TrimSpace(internal.Colorize(renderHelp))
}

func GetRenderParams(settings GlobalSettings, source io.Reader, args []string) (*RenderParams, error) {
	flagset := flag.NewFlagSet("render", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), renderHelp)
		flagset.PrintDefaults()
	}

	params := RenderParams{GlobalSettings: settings, Input: source}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.StringVar(&params.Out, "out", "", "if present writes the rendered deployment into the directory specified instead of stdout")

	flagset.Parse(args)

	params.SpecPath = flagset.Arg(0)

	if params.SpecPath == "" && params.Input == nil {
		return nil, fmt.Errorf("spec path is required as first positional arg")
	}

	return &params, nil
}

// Render prints the deployment template built from the desired spec without contacting the cluster.
func Render(ctx context.Context, params RenderParams) error {
	spec, err := ReadSpec(params.SpecPath, params.Input)
	if err != nil {
		return err
	}

	if err := spec.Validate(); err != nil {
		return err
	}

	template := deploy.BuildTemplate(spec)

	if params.Out == "" {
		return internal.EncodeYAML(internal.Stdout(ctx), template.Object)
	}

	template.SetNamespace(cmp.Or(params.Namespace, k8s.DefaultNamespace))

	return ExportToFS(params.Out, template.Object, internal.Canonical(template))
}

func ExportToFS(dir string, value any, name string) error {
	path := filepath.Join(dir, name+".yaml")
	if err := internal.WriteYAML(path, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
