package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/davidmdm/kdeploy/internal"
	"github.com/davidmdm/kdeploy/internal/k8s"
	"github.com/davidmdm/kdeploy/internal/text"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

type ApplyParams struct {
	GlobalSettings

	SpecPath string
	Input    io.Reader

	Policy deploy.Policy

	DiffOnly     bool
	Color        bool
	ContextLines int
	Wait         time.Duration
	Poll         time.Duration
	Output       string
}

//go:embed cmd_apply_help.txt
var applyHelp string

func init() {
	applyHelp = strings.TrimSpace(internal.Colorize(applyHelp))
}

func GetApplyParams(settings GlobalSettings, source io.Reader, args []string) (*ApplyParams, error) {
	flagset := flag.NewFlagSet("apply", flag.ExitOnError)

	flagset.Usage = func() {
		fmt.Fprintln(flagset.Output(), applyHelp)
		flagset.PrintDefaults()
	}

	params := ApplyParams{
		GlobalSettings: settings,
		Input:          source,
		Policy:         deploy.DefaultPolicy(),
	}

	RegisterGlobalFlags(flagset, &params.GlobalSettings)

	flagset.BoolVar(&params.Policy.Recreate, "recreate", false, "delete then create the deployment if it already exists (takes precedence over -replace)")
	flagset.BoolVar(&params.Policy.Replace, "replace", true, "replace the deployment if it already exists")
	flagset.BoolVar(&params.Policy.DryRun, "dry-run", false, "report the actions that would be taken without applying them")

	flagset.BoolVar(&params.DiffOnly, "diff-only", false, "show the diff between the current deployment and the rendered template. Does not apply anything to cluster")
	flagset.BoolVar(&params.Color, "color", term.IsTerminal(int(os.Stdout.Fd())), "use colored output in diffs")
	flagset.IntVar(&params.ContextLines, "context-lines", 4, "number of lines of context in diff (ignored if not using -diff-only)")
	flagset.DurationVar(&params.Wait, "wait", 0, "time to wait for the deployment to be ready")
	flagset.DurationVar(&params.Poll, "poll", 2*time.Second, "interval to poll deployment state at. Used with -wait")
	flagset.StringVar(&params.Output, "output", OutputYAML, "report format: yaml, json or table")

	flagset.Parse(args)

	params.SpecPath = flagset.Arg(0)

	if params.SpecPath == "" && params.Input == nil {
		return nil, fmt.Errorf("spec path is required as first positional arg")
	}
	if err := validateOutput(params.Output); err != nil {
		return nil, err
	}

	return &params, nil
}

func Apply(ctx context.Context, params ApplyParams) error {
	spec, err := ReadSpec(params.SpecPath, params.Input)
	if err != nil {
		return err
	}

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

	reconcileParams := deploy.Params{Spec: spec, Policy: params.Policy}

	if params.DiffOnly {
		plan, err := reconciler.Plan(ctx, reconcileParams)
		if err != nil {
			return err
		}

		diff, err := DiffPlan(spec, plan, params.Color, params.ContextLines)
		if err != nil {
			return err
		}
		if diff == "" {
			return internal.Warningf("deployment %s is up to date", spec.Name)
		}

		_, err = fmt.Fprint(internal.Stdout(ctx), diff)
		return err
	}

	report, err := reconciler.Reconcile(ctx, reconcileParams)
	if err != nil {
		if report != nil && report.Changed {
			return fmt.Errorf("deployment %s was partially changed: %w", spec.Name, err)
		}
		return err
	}

	if params.Wait > 0 && !params.Policy.DryRun && report.Resource != nil {
		logger.WithField("deployment", spec.Name).Info("waiting for deployment to be ready")

		opts := k8s.WaitOptions{Timeout: params.Wait, Interval: params.Poll}
		if err := k8s.WaitForReady(ctx, cluster, deploy.DeploymentGVK, spec.Name, opts); err != nil {
			return fmt.Errorf("failed to wait for deployment %s: %w", spec.Name, err)
		}
	}

	return WriteReport(internal.Stdout(ctx), *report, params.Output)
}

// ReadSpec reads the desired spec from path, or from input when path is empty or "-".
func ReadSpec(path string, input io.Reader) (deploy.DesiredSpec, error) {
	var (
		data []byte
		err  error
	)

	switch {
	case path != "" && path != "-":
		data, err = os.ReadFile(path)
	case input != nil:
		data, err = io.ReadAll(input)
	default:
		return deploy.DesiredSpec{}, fmt.Errorf("no spec provided")
	}
	if err != nil {
		return deploy.DesiredSpec{}, fmt.Errorf("failed to read spec: %w", err)
	}

	return deploy.ParseSpec(data)
}

// DiffPlan returns the diff between the declared fields of the observed deployment and the template
// the plan would send. When removing, the right hand side is empty.
func DiffPlan(spec deploy.DesiredSpec, plan *deploy.Plan, color bool, contextLines int) (string, error) {
	template := deploy.BuildTemplate(spec)

	var current, next any
	if plan.Observed != nil {
		current = deploy.Declared(plan.Observed, template)
	}
	if plan.State != deploy.StateRemovePresent && plan.State != deploy.StateRemoveAbsent {
		next = template.Object
	}

	currentFile, err := text.ToYamlFile("current", current)
	if err != nil {
		return "", fmt.Errorf("failed to encode current deployment: %w", err)
	}

	nextFile, err := text.ToYamlFile("next", next)
	if err != nil {
		return "", fmt.Errorf("failed to encode next deployment: %w", err)
	}

	differ := text.Diff
	if color {
		differ = text.DiffColorized
	}

	return differ(currentFile, nextFile, contextLines), nil
}
