// Package kubectl implements the cluster capability by shelling out to a kubectl binary.
package kubectl

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/davidmdm/kdeploy/internal"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

const (
	DefaultBinary  = "kubectl"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	Binary     string
	Kubeconfig string
	Context    string
	Namespace  string
	// Timeout bounds every kubectl invocation.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

var _ deploy.Cluster = Client{}

// CommandError is returned when kubectl exits unsuccessfully.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (err *CommandError) Error() string {
	msg := fmt.Sprintf("kubectl %s: %v", strings.Join(err.Args, " "), err.Err)
	if stderr := strings.TrimSpace(err.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (err *CommandError) Unwrap() error { return err.Err }

// Output is the combined captured output of the failed command.
func (err *CommandError) Output() string {
	var parts []string
	for _, part := range []string{err.Stdout, err.Stderr} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}

func (client Client) Get(ctx context.Context, gvk schema.GroupVersionKind, name string) (*unstructured.Unstructured, error) {
	output, err := client.run(ctx, nil, "get", ref(gvk, name), "-o", "json")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "not found") {
			return nil, kerrors.NewNotFound(schema.GroupResource{Group: gvk.Group, Resource: strings.ToLower(gvk.Kind)}, name)
		}
		return nil, err
	}
	return decode(name, output)
}

func (client Client) Create(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return client.submit(ctx, "create", resource)
}

func (client Client) Replace(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return client.submit(ctx, "replace", resource)
}

func (client Client) Delete(ctx context.Context, gvk schema.GroupVersionKind, name string) error {
	_, err := client.run(ctx, nil, "delete", ref(gvk, name))
	return err
}

func (client Client) submit(ctx context.Context, verb string, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	data, err := json.MarshalIndent(resource, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", internal.Canonical(resource), err)
	}

	client.logger().WithField("template", string(data)).Debugf("%s from template", verb)

	output, err := client.run(ctx, data, verb, "-f", "-", "-o", "json")
	if err != nil {
		return nil, err
	}

	return decode(resource.GetName(), output)
}

func (client Client) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cmp.Or(client.Timeout, DefaultTimeout))
	defer cancel()

	args = append(args, client.globalArgs()...)

	logger := client.logger()

	defer internal.DebugTimer(logger, "kubectl "+strings.Join(args, " "))()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, cmp.Or(client.Binary, DefaultBinary), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()

	logger.
		WithField("stdout", stdout.String()).
		WithField("stderr", stderr.String()).
		Debug("kubectl output")

	if err != nil {
		return nil, &CommandError{
			Args:   args,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return stdout.Bytes(), nil
}

func (client Client) globalArgs() (args []string) {
	if client.Kubeconfig != "" {
		args = append(args, "--kubeconfig", client.Kubeconfig)
	}
	if client.Context != "" {
		args = append(args, "--context", client.Context)
	}
	if client.Namespace != "" {
		args = append(args, "--namespace", client.Namespace)
	}
	return
}

func (client Client) logger() logrus.FieldLogger {
	if client.Logger == nil {
		return internal.Discard
	}
	return client.Logger
}

// ref renders a fully qualified kubectl resource reference, ie: "deployment.v1.apps/web".
func ref(gvk schema.GroupVersionKind, name string) string {
	parts := []string{strings.ToLower(gvk.Kind)}
	if gvk.Version != "" {
		parts = append(parts, gvk.Version)
	}
	if gvk.Group != "" {
		parts = append(parts, gvk.Group)
	}
	return strings.Join(parts, ".") + "/" + name
}

func decode(name string, data []byte) (*unstructured.Unstructured, error) {
	var resource unstructured.Unstructured
	if err := resource.UnmarshalJSON(data); err != nil {
		return nil, &deploy.ResponseDecodeError{Name: name, Err: err}
	}
	return &resource, nil
}
