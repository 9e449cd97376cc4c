package commands

import (
	"time"

	"k8s.io/client-go/tools/clientcmd"
)

// Command execution constants
const (
	// DefaultKubectlTimeout is the default timeout for kubectl subprocess
	// commands. Set to 30 seconds to handle slow clusters or large resource
	// operations while preventing indefinite hangs.
	DefaultKubectlTimeout = 30 * time.Second

	// DefaultKubectlBinary is looked up on PATH when no binary is configured
	DefaultKubectlBinary = "kubectl"

	// KubeconfigEnvVar is exported to child processes to pin the kubeconfig
	KubeconfigEnvVar = clientcmd.RecommendedConfigPathEnvVar
)
