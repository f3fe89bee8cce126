package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
)

type Getter interface {
	Get(ctx context.Context, gvk schema.GroupVersionKind, name string) (*unstructured.Unstructured, error)
}

type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

// WaitForReady polls the resource until it is ready or the timeout elapses.
func WaitForReady(ctx context.Context, getter Getter, gvk schema.GroupVersionKind, name string, opts WaitOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	var last *unstructured.Unstructured

	err := wait.PollUntilContextTimeout(ctx, opts.Interval, opts.Timeout, true, func(ctx context.Context) (bool, error) {
		resource, err := getter.Get(ctx, gvk, name)
		if err != nil {
			return false, err
		}
		last = resource
		return IsReady(resource), nil
	})
	if err != nil {
		if last != nil && wait.Interrupted(err) {
			return fmt.Errorf("%s/%s is not ready: %w", gvk.Kind, name, err)
		}
		return err
	}

	return nil
}

// IsReady checks for readiness of workload resources, namespaces, and CRDs
func IsReady(resource *unstructured.Unstructured) bool {
	gvk := resource.GroupVersionKind()

	switch gvk.Group {
	case "":
		switch gvk.Kind {
		case "Namespace":
			phase, _, _ := unstructured.NestedString(resource.Object, "status", "phase")
			return phase == "Active"
		case "Pod":
			return meetsConditions(resource, "Ready")
		}
	case "apps":
		switch gvk.Kind {
		case "Deployment":
			return true &&
				observedCurrentGeneration(resource) &&
				meetsConditions(resource, "Available") &&
				equalInts(resource, "replicas", "availableReplicas", "readyReplicas", "updatedReplicas")
		case "ReplicaSet", "StatefulSet":
			return equalInts(resource, "replicas", "availableReplicas", "readyReplicas", "updatedReplicas")
		}
	}

	return true
}

func observedCurrentGeneration(resource *unstructured.Unstructured) bool {
	observed, found, _ := unstructured.NestedInt64(resource.Object, "status", "observedGeneration")
	return !found || observed >= resource.GetGeneration()
}

func meetsConditions(resource *unstructured.Unstructured, keys ...string) bool {
	conditions, _, _ := unstructured.NestedSlice(resource.Object, "status", "conditions")

	trueConditions := map[string]bool{}
	for _, condition := range conditions {
		values, _ := condition.(map[string]any)
		cond, _ := values["type"].(string)
		if cond == "" {
			continue
		}
		trueConditions[cond] = values["status"] == "True"
	}

	for _, key := range keys {
		if !trueConditions[key] {
			return false
		}
	}

	return true
}

func equalInts(resource *unstructured.Unstructured, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}

	values := []int64{}
	for _, key := range keys {
		value, _, _ := unstructured.NestedInt64(resource.Object, "status", key)
		values = append(values, value)
	}

	wanted := values[0]
	for _, value := range values[1:] {
		if value != wanted {
			return false
		}
	}

	return true
}
