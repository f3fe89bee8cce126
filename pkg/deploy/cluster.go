package deploy

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/davidmdm/kdeploy/pkg/deploy/resource"
)

var DeploymentGVK = schema.FromAPIVersionAndKind(resource.DeploymentAPIVersion, resource.DeploymentKind)

// Cluster is the capability used to read and mutate resources. Every call is a single
// blocking attempt. Get must return an error satisfying k8s.io/apimachinery/pkg/api/errors.IsNotFound
// when the resource does not exist.
type Cluster interface {
	Get(ctx context.Context, gvk schema.GroupVersionKind, name string) (*unstructured.Unstructured, error)
	Create(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error)
	Replace(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, gvk schema.GroupVersionKind, name string) error
}
