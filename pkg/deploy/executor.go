package deploy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/kdeploy/internal"
)

type Executor struct {
	Cluster Cluster
	Logger  logrus.FieldLogger
}

type Outcome struct {
	// Changed is true once at least one action has been issued successfully.
	Changed bool
	// Actions lists the descriptions of the actions applied, or that would have been applied in a dry run.
	Actions []string
	// Resource is the confirmed deployment after a trailing Create or Replace. Nil otherwise.
	Resource *unstructured.Unstructured
}

// Apply runs the actions in order. Execution stops at the first failure and nothing already issued is undone:
// a failed Create following a successful Delete leaves the deployment absent.
// In a dry run no call is made to the cluster and only the descriptions are recorded.
func (executor Executor) Apply(ctx context.Context, actions []Action, dryRun bool) (Outcome, error) {
	if dryRun {
		for _, action := range actions {
			executor.logger().WithField("action", action.String()).Info("dry run: skipping action")
		}
		return Outcome{Changed: len(actions) > 0, Actions: Describe(actions)}, nil
	}

	var outcome Outcome
	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("aborted before %q: %w", action, err)
		}

		executor.logger().WithField("action", action.String()).Info("applying action")

		if err := executor.apply(ctx, action); err != nil {
			return outcome, clusterError(action.String(), err)
		}

		outcome.Changed = true
		outcome.Actions = append(outcome.Actions, action.String())
	}

	if len(actions) == 0 {
		return outcome, nil
	}

	last := actions[len(actions)-1]
	if last.Kind == ActionDelete {
		return outcome, nil
	}

	resource, err := Reader{Cluster: executor.Cluster, Logger: executor.Logger}.Fetch(ctx, last.Name)
	if err != nil {
		return outcome, fmt.Errorf("failed to confirm %q: %w", last, err)
	}

	outcome.Resource = resource

	return outcome, nil
}

func (executor Executor) apply(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActionCreate:
		_, err := executor.Cluster.Create(ctx, action.Template)
		return err
	case ActionReplace:
		_, err := executor.Cluster.Replace(ctx, action.Template)
		return err
	case ActionDelete:
		return executor.Cluster.Delete(ctx, DeploymentGVK, action.Name)
	default:
		return fmt.Errorf("unknown action kind: %v", action.Kind)
	}
}

func (executor Executor) logger() logrus.FieldLogger {
	if executor.Logger == nil {
		return internal.Discard
	}
	return executor.Logger
}
