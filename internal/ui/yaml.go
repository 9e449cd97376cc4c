package ui

import (
	"fmt"
	"io"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/cli-runtime/pkg/printers"
	"k8s.io/client-go/kubernetes/scheme"
)

// PrintYAML writes obj the way `kubectl get -o yaml` does, filling in
// apiVersion and kind from the client-go scheme
func PrintYAML(w io.Writer, obj runtime.Object) error {
	printer := printers.NewTypeSetter(scheme.Scheme).ToPrinter(&printers.YAMLPrinter{})
	if err := printer.PrintObj(obj, w); err != nil {
		return fmt.Errorf("failed to print YAML: %w", err)
	}
	return nil
}
