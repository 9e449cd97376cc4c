package kubeconfig

// File is a kubeconfig file offered to the user for selection
type File struct {
	Path        string
	DisplayName string
	IsDefault   bool
}

// Context is a kubeconfig context joined with its cluster record.
// Fields other than Name are empty when the kubeconfig does not set them or
// references a cluster that does not exist.
type Context struct {
	Name        string
	ClusterName string
	UserName    string
	Namespace   string
	ServerURL   string
}

// Summary is the snapshot handed to callers after a resolve/discover cycle.
//
// CurrentContextName is a hint taken from the file's current-context field.
// It may name a context that is not in Contexts.
type Summary struct {
	Contexts             []Context
	CurrentContextName   string
	ActiveKubeconfigPath string
	AvailableConfigs     []File
}

// Context returns the context with the given name
func (s Summary) Context(name string) (Context, bool) {
	for _, c := range s.Contexts {
		if c.Name == name {
			return c, true
		}
	}
	return Context{}, false
}

// HasContext reports whether name is one of the summary's contexts
func (s Summary) HasContext(name string) bool {
	_, ok := s.Context(name)
	return ok
}

// ContextNames returns the context names in document order
func (s Summary) ContextNames() []string {
	names := make([]string, 0, len(s.Contexts))
	for _, c := range s.Contexts {
		names = append(names, c.Name)
	}
	return names
}
