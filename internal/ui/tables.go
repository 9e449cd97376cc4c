package ui

import (
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"

	"github.com/renato0307/kdesk/internal/kubeconfig"
)

const activeMarker = "*"

// ConfigsTable lists discovered kubeconfig files, marking the active one
func ConfigsTable(files []kubeconfig.File, activePath string, theme *Theme) string {
	rows := make([][]string, 0, len(files))
	active := -1
	for i, f := range files {
		marker := ""
		if samePath(f.Path, activePath) {
			marker = activeMarker
			active = i
		}
		rows = append(rows, []string{marker, f.DisplayName, f.Path})
	}
	return newTable(theme, active).
		Headers("", "NAME", "PATH").
		Rows(rows...).
		String()
}

// ContextsTable lists contexts, marking the selected one
func ContextsTable(contexts []kubeconfig.Context, selected string, theme *Theme) string {
	rows := make([][]string, 0, len(contexts))
	active := -1
	for i, c := range contexts {
		marker := ""
		if c.Name == selected {
			marker = activeMarker
			active = i
		}
		rows = append(rows, []string{marker, c.Name, c.ClusterName, c.UserName, c.Namespace, c.ServerURL})
	}
	return newTable(theme, active).
		Headers("", "NAME", "CLUSTER", "USER", "NAMESPACE", "SERVER").
		Rows(rows...).
		String()
}

// NamespacesTable lists namespaces with their phase and age, marking the
// selected one
func NamespacesTable(list *corev1.NamespaceList, selected string, now time.Time, theme *Theme) string {
	var items []corev1.Namespace
	if list != nil {
		items = list.Items
	}
	rows := make([][]string, 0, len(items))
	active := -1
	for i, ns := range items {
		marker := ""
		if ns.Name == selected {
			marker = activeMarker
			active = i
		}
		rows = append(rows, []string{marker, ns.Name, string(ns.Status.Phase), age(ns.CreationTimestamp.Time, now)})
	}
	return newTable(theme, active).
		Headers("", "NAME", "STATUS", "AGE").
		Rows(rows...).
		String()
}

func age(created, now time.Time) string {
	if created.IsZero() {
		return "<unknown>"
	}
	return duration.HumanDuration(now.Sub(created))
}

func newTable(theme *Theme, activeRow int) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return theme.Table.Header
			case row == activeRow:
				return theme.Table.Active
			default:
				return theme.Table.Cell
			}
		})
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
