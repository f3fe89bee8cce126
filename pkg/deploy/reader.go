package deploy

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/kdeploy/internal"
)

// Reader fetches the observed state of a deployment.
type Reader struct {
	Cluster Cluster
	Logger  logrus.FieldLogger
}

// Fetch returns the observed deployment, or nil when the cluster reports it does not exist.
// Every other failure is returned as an error and must never be taken as absence.
func (reader Reader) Fetch(ctx context.Context, name string) (*unstructured.Unstructured, error) {
	resource, err := reader.Cluster.Get(ctx, DeploymentGVK, name)
	if kerrors.IsNotFound(err) {
		reader.logger().WithField("deployment", name).Debug("deployment not found")
		return nil, nil
	}
	if err != nil {
		return nil, clusterError("Get deployment "+name, err)
	}

	if resource == nil {
		return nil, &ResponseDecodeError{Name: name, Err: fmt.Errorf("empty document")}
	}
	if kind := resource.GetKind(); kind != DeploymentGVK.Kind {
		return nil, &ResponseDecodeError{Name: name, Err: fmt.Errorf("expected kind %s but got %q", DeploymentGVK.Kind, kind)}
	}
	if actual := resource.GetName(); actual != name {
		return nil, &ResponseDecodeError{Name: name, Err: fmt.Errorf("expected name %q but got %q", name, actual)}
	}

	reader.logger().
		WithField("deployment", name).
		WithField("resourceVersion", resource.GetResourceVersion()).
		Debug("observed deployment")

	return resource, nil
}

func (reader Reader) logger() logrus.FieldLogger {
	if reader.Logger == nil {
		return internal.Discard
	}
	return reader.Logger
}
