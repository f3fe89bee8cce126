package k8s

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/davidmdm/kdeploy/internal"
)

const (
	fieldManager     = "kdeploy"
	DefaultNamespace = "default"
	DefaultTimeout   = 30 * time.Second
)

type Client struct {
	dynamic   dynamic.Interface
	mapper    meta.RESTMapper
	namespace string
	timeout   time.Duration
	logger    logrus.FieldLogger
}

type Options struct {
	// Namespace for namespaced resources. Defaults to the kubeconfig context namespace, then "default".
	Namespace string
	// Timeout bounds every call made to the API server.
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

type KubeConfig struct {
	// Path may be a list of files joined by the OS path list separator, like $KUBECONFIG.
	Path    string
	Context string
}

func NewClientFromKubeConfig(kubeconfig KubeConfig, opts Options) (*Client, error) {
	rules := clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig.Path}
	if paths := filepath.SplitList(kubeconfig.Path); len(paths) > 1 {
		rules = clientcmd.ClientConfigLoadingRules{Precedence: paths}
	}

	clientCfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&rules,
		&clientcmd.ConfigOverrides{CurrentContext: kubeconfig.Context},
	)

	restcfg, err := clientCfg.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build k8 config: %w", err)
	}

	if opts.Namespace == "" {
		if namespace, _, err := clientCfg.Namespace(); err == nil {
			opts.Namespace = namespace
		}
	}

	return NewClient(restcfg, opts)
}

func NewClient(cfg *rest.Config, opts Options) (*Client, error) {
	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client component: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create k8 clientset: %w", err)
	}

	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(clientset.Discovery()))

	return NewClientFrom(dynamicClient, mapper, opts), nil
}

// NewClientFrom builds a client from already constructed components.
func NewClientFrom(dynamicClient dynamic.Interface, mapper meta.RESTMapper, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = internal.Discard
	}
	return &Client{
		dynamic:   dynamicClient,
		mapper:    mapper,
		namespace: cmp.Or(opts.Namespace, DefaultNamespace),
		timeout:   cmp.Or(opts.Timeout, DefaultTimeout),
		logger:    logger,
	}
}

func (client Client) Namespace() string { return client.namespace }

func (client Client) Get(ctx context.Context, gvk schema.GroupVersionKind, name string) (*unstructured.Unstructured, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	defer internal.DebugTimer(client.logger, "get "+gvk.Kind+"/"+name)()

	resourceInterface, err := client.GetDynamicResourceInterface(gvk)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource: %w", err)
	}

	return resourceInterface.Get(ctx, name, metav1.GetOptions{})
}

func (client Client) Create(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	defer internal.DebugTimer(client.logger, "create "+internal.Canonical(resource))()

	resourceInterface, resource, err := client.prepare(resource)
	if err != nil {
		return nil, err
	}

	return resourceInterface.Create(ctx, resource, metav1.CreateOptions{FieldManager: fieldManager})
}

// Replace overwrites the live resource with the given document. The document is sent
// with the live resourceVersion so the update is unconditional, like kubectl replace.
func (client Client) Replace(ctx context.Context, resource *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	defer internal.DebugTimer(client.logger, "replace "+internal.Canonical(resource))()

	resourceInterface, resource, err := client.prepare(resource)
	if err != nil {
		return nil, err
	}

	if resource.GetResourceVersion() == "" {
		current, err := resourceInterface.Get(ctx, resource.GetName(), metav1.GetOptions{})
		if err != nil {
			return nil, err
		}
		resource.SetResourceVersion(current.GetResourceVersion())
	}

	return resourceInterface.Update(ctx, resource, metav1.UpdateOptions{FieldManager: fieldManager})
}

func (client Client) Delete(ctx context.Context, gvk schema.GroupVersionKind, name string) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	defer internal.DebugTimer(client.logger, "delete "+gvk.Kind+"/"+name)()

	resourceInterface, err := client.GetDynamicResourceInterface(gvk)
	if err != nil {
		return fmt.Errorf("failed to resolve resource: %w", err)
	}

	propagation := metav1.DeletePropagationBackground

	return resourceInterface.Delete(ctx, name, metav1.DeleteOptions{PropagationPolicy: &propagation})
}

// prepare resolves the resource interface and returns a copy of the resource scoped to the client namespace.
func (client Client) prepare(resource *unstructured.Unstructured) (dynamic.ResourceInterface, *unstructured.Unstructured, error) {
	mapping, err := client.LookupResourceMapping(resource.GroupVersionKind())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve resource: %w", err)
	}

	resource = resource.DeepCopy()

	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		return client.dynamic.Resource(mapping.Resource), resource, nil
	}

	if resource.GetNamespace() == "" {
		resource.SetNamespace(client.namespace)
	}

	return client.dynamic.Resource(mapping.Resource).Namespace(resource.GetNamespace()), resource, nil
}

func (client Client) GetDynamicResourceInterface(gvk schema.GroupVersionKind) (dynamic.ResourceInterface, error) {
	mapping, err := client.LookupResourceMapping(gvk)
	if err != nil {
		return nil, err
	}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		return client.dynamic.Resource(mapping.Resource).Namespace(client.namespace), nil
	}
	return client.dynamic.Resource(mapping.Resource), nil
}

func (client Client) LookupResourceMapping(gvk schema.GroupVersionKind) (*meta.RESTMapping, error) {
	return client.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
}
