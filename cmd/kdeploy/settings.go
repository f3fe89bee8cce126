package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/davidmdm/conf"
	"github.com/sirupsen/logrus"

	"github.com/davidmdm/kdeploy/internal/home"
	"github.com/davidmdm/kdeploy/internal/k8s"
	"github.com/davidmdm/kdeploy/internal/kubectl"
	"github.com/davidmdm/kdeploy/internal/logging"
	"github.com/davidmdm/kdeploy/pkg/deploy"
)

const (
	DriverAPI     = "api"
	DriverKubectl = "kubectl"
)

type GlobalSettings struct {
	KubeConfigPath string
	KubeContext    string
	Namespace      string
	Driver         string
	KubectlPath    string
	Debug          bool
	LogFile        string
	LogFormat      string
	Timeout        time.Duration
}

func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		KubeConfigPath: home.Kubeconfig,
		Driver:         DriverAPI,
		KubectlPath:    kubectl.DefaultBinary,
		LogFormat:      string(logging.FormatText),
		Timeout:        k8s.DefaultTimeout,
	}
}

// LoadGlobalSettings returns the default settings overridden by the environment.
// Flags registered afterwards take these values as their defaults.
func LoadGlobalSettings() (GlobalSettings, error) {
	settings := DefaultGlobalSettings()

	conf.Var(conf.Environ, &settings.KubeConfigPath, "KUBECONFIG", conf.Default(settings.KubeConfigPath))
	conf.Var(conf.Environ, &settings.Namespace, "KDEPLOY_NAMESPACE")
	conf.Var(conf.Environ, &settings.Debug, "KDEPLOY_DEBUG")
	conf.Var(conf.Environ, &settings.LogFile, "KDEPLOY_LOG_FILE")

	err := conf.Environ.Parse()

	return settings, err
}

func RegisterGlobalFlags(flagset *flag.FlagSet, settings *GlobalSettings) {
	flagset.StringVar(&settings.KubeConfigPath, "kubeconfig", settings.KubeConfigPath, "path to kube config")
	flagset.StringVar(&settings.KubeContext, "context", settings.KubeContext, "kube config context to use instead of the current context")
	flagset.StringVar(&settings.Namespace, "namespace", settings.Namespace, "namespace of the deployment (defaults to the context namespace)")
	flagset.StringVar(&settings.Driver, "driver", settings.Driver, "cluster driver: api or kubectl")
	flagset.StringVar(&settings.KubectlPath, "kubectl", settings.KubectlPath, "path to the kubectl binary (used with -driver kubectl)")
	flagset.BoolVar(&settings.Debug, "debug", settings.Debug, "enable debug logging")
	flagset.StringVar(&settings.LogFile, "log-file", settings.LogFile, "append logs to this file instead of stderr")
	flagset.StringVar(&settings.LogFormat, "log-format", settings.LogFormat, "log format: text or json")
	flagset.DurationVar(&settings.Timeout, "timeout", settings.Timeout, "timeout of every individual cluster call")
}

func (settings GlobalSettings) Logger() (*logrus.Logger, func() error, error) {
	return logging.New(logging.Config{
		Debug:  settings.Debug,
		File:   settings.LogFile,
		Format: logging.Format(settings.LogFormat),
	})
}

// Cluster builds the cluster client selected by the driver setting.
func (settings GlobalSettings) Cluster(logger logrus.FieldLogger) (deploy.Cluster, error) {
	switch settings.Driver {
	case DriverAPI:
		client, err := k8s.NewClientFromKubeConfig(
			k8s.KubeConfig{Path: settings.KubeConfigPath, Context: settings.KubeContext},
			k8s.Options{Namespace: settings.Namespace, Timeout: settings.Timeout, Logger: logger},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to instantiate k8 client: %w", err)
		}
		return client, nil
	case DriverKubectl:
		kubeconfig := settings.KubeConfigPath
		if len(filepath.SplitList(kubeconfig)) > 1 {
			// kubectl only accepts a single --kubeconfig but reads $KUBECONFIG lists itself.
			kubeconfig = ""
		}
		return kubectl.Client{
			Binary:     settings.KubectlPath,
			Kubeconfig: kubeconfig,
			Context:    settings.KubeContext,
			Namespace:  settings.Namespace,
			Timeout:    settings.Timeout,
			Logger:     logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown driver %q: must be one of %s or %s", settings.Driver, DriverAPI, DriverKubectl)
	}
}
