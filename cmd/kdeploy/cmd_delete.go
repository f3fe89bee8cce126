package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"strings"

	"github.com/davidmdm/kdeploy/internal"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

type DeleteParams struct {
	GlobalSettings
	Name   string
	DryRun bool
	Output string
}

//go:embed cmd_delete_help.txt
var deleteHelp string

func init() {
	deleteHelp = strings.TrimSpace(internal.Colorize(deleteHelp))
}

func GetDeleteParams(settings GlobalSettings, args []string) (*DeleteParams, error) {
	flagset := flag.NewFlagSet("delete", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), deleteHelp)
		flagset.PrintDefaults()
	}

	params := DeleteParams{GlobalSettings: settings}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.BoolVar(&params.DryRun, "dry-run", false, "report whether the deployment would be deleted without deleting it")
	flagset.StringVar(&params.Output, "output", OutputYAML, "report format: yaml, json or table")

	flagset.Parse(args)

	params.Name = flagset.Arg(0)
	if params.Name == "" {
		return nil, fmt.Errorf("deployment name is required")
	}
	if err := validateOutput(params.Output); err != nil {
		return nil, err
	}

	return &params, nil
}

func Delete(ctx context.Context, params DeleteParams) error {
	logger, closeLogs, err := params.Logger()
	if err != nil {
		return err
	}
	defer closeLogs()

	cluster, err := params.Cluster(logger)
	if err != nil {
		return err
	}

	reconciler := deploy.Reconciler{Cluster: cluster, Logger: logger}

	report, err := reconciler.Reconcile(ctx, deploy.Params{
		Spec:   deploy.DesiredSpec{Name: params.Name},
		Policy: deploy.Policy{State: deploy.Absent, DryRun: params.DryRun},
	})
	if err != nil {
		return err
	}

	return WriteReport(internal.Stdout(ctx), *report, params.Output)
}
