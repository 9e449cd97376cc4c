package commands

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// ListNamespacesArgs returns the kubectl arguments listing the namespaces
// of contextName as JSON
func ListNamespacesArgs(contextName string) []string {
	return []string{"get", "namespaces", "-o", "json", "--context", contextName}
}

// ParseNamespaceList decodes `kubectl get namespaces -o json` output.
// kubectl reports the list as kind "List"; the type meta is cleared so
// printers can set the real one.
func ParseNamespaceList(stdout string) (*corev1.NamespaceList, error) {
	var list corev1.NamespaceList
	if err := yaml.Unmarshal([]byte(stdout), &list); err != nil {
		return nil, fmt.Errorf("error parsing namespace list: %w", err)
	}
	list.TypeMeta = metav1.TypeMeta{}
	for i := range list.Items {
		list.Items[i].TypeMeta = metav1.TypeMeta{}
	}
	return &list, nil
}

// NamespaceNames returns the sorted names of the namespaces in list
func NamespaceNames(list *corev1.NamespaceList) []string {
	if list == nil {
		return nil
	}
	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	sort.Strings(names)
	return names
}
