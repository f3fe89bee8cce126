// Package deploy reconciles a declared deployment against the state observed in a cluster.
//
// A pass is strictly sequential: the current deployment is read once, the actions are
// decided from its existence and the operator's policy, and they are applied in order
// (or only described in a dry run). Nothing is cached between passes.
package deploy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/kdeploy/internal"
)

type Reconciler struct {
	Cluster Cluster
	Logger  logrus.FieldLogger
}

type Params struct {
	Spec   DesiredSpec
	Policy Policy
}

// Plan is the decision for a pass together with the state it was derived from.
type Plan struct {
	Decision
	Observed *unstructured.Unstructured
}

func (params Params) Validate() error {
	if err := params.Policy.Validate(); err != nil {
		return err
	}
	if params.Policy.State == Absent {
		return params.Spec.ValidateName()
	}
	return params.Spec.Validate()
}

// Plan validates the params, reads the observed deployment and decides the actions without applying them.
func (reconciler Reconciler) Plan(ctx context.Context, params Params) (*Plan, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	logger := reconciler.logger().WithField("deployment", params.Spec.Name)

	observed, err := reconciler.reader().Fetch(ctx, params.Spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read observed state: %w", err)
	}

	decision := Decide(params.Spec, params.Policy, observed)

	logger.
		WithField("exists", observed != nil).
		WithField("state", decision.State.String()).
		WithField("actions", len(decision.Actions)).
		Debug("decided reconciliation")

	return &Plan{Decision: decision, Observed: observed}, nil
}

// Reconcile performs a full pass: plan then execute.
func (reconciler Reconciler) Reconcile(ctx context.Context, params Params) (*Report, error) {
	plan, err := reconciler.Plan(ctx, params)
	if err != nil {
		return nil, err
	}
	return reconciler.Execute(ctx, params, plan)
}

// Execute applies a plan. On failure the returned report only tells whether anything was changed before the failure.
func (reconciler Reconciler) Execute(ctx context.Context, params Params, plan *Plan) (*Report, error) {
	executor := Executor{Cluster: reconciler.Cluster, Logger: reconciler.logger()}

	outcome, err := executor.Apply(ctx, plan.Actions, params.Policy.DryRun)
	if err != nil {
		return &Report{State: plan.State, Changed: outcome.Changed}, err
	}

	report := Report{
		State:   plan.State,
		Changed: plan.Changed(),
	}

	switch {
	case params.Policy.DryRun:
		report.Actions = outcome.Actions
		report.Resource = plan.Observed
	case len(plan.Actions) == 0:
		report.Resource = plan.Observed
	default:
		report.Resource = outcome.Resource
	}

	if params.Policy.State == Present {
		report.Facts = map[string]any{FactKey(params.Spec.Name): objectOrNil(report.Resource)}
	}

	return &report, nil
}

func (reconciler Reconciler) reader() Reader {
	return Reader{Cluster: reconciler.Cluster, Logger: reconciler.logger()}
}

func (reconciler Reconciler) logger() logrus.FieldLogger {
	if reconciler.Logger == nil {
		return internal.Discard
	}
	return reconciler.Logger
}
