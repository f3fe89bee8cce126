package home

import (
	"os"
	"path/filepath"
)

// Kubeconfig is the default kubeconfig location. Empty when the home directory cannot be resolved,
// in which case client-go falls back to in-cluster configuration.
var Kubeconfig = func() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".kube", "config")
}()
