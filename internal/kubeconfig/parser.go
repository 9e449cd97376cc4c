package kubeconfig

import (
	"sigs.k8s.io/yaml"
)

// document is the loosely typed form of a kubeconfig file. The parser does
// not use clientcmd's schema so that unknown or mistyped fields degrade to
// empty values instead of failing the whole load, and so that contexts keep
// their document order.
type document map[string]interface{}

func parseDocument(data []byte) (document, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// looksLikeKubeconfig is the structural check used by discovery
func (d document) looksLikeKubeconfig() bool {
	if d == nil {
		return false
	}
	_, hasContexts := d["contexts"]
	_, hasClusters := d["clusters"]
	return hasContexts || hasClusters
}

func (d document) currentContext() string {
	return stringField(d, "current-context")
}

// contexts joins every named context with its cluster, in document order.
// Entries without a name and repeated names are skipped.
func (d document) contexts() []Context {
	servers := d.clusterServers()

	var out []Context
	seen := make(map[string]bool)
	for _, item := range listField(d, "contexts") {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringField(entry, "name")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		body := mapField(entry, "context")
		cluster := stringField(body, "cluster")
		out = append(out, Context{
			Name:        name,
			ClusterName: cluster,
			UserName:    stringField(body, "user"),
			Namespace:   stringField(body, "namespace"),
			ServerURL:   servers[cluster],
		})
	}
	return out
}

// clusterServers maps cluster name to server URL. The first definition of a
// name wins, matching how kubectl resolves duplicates within one file.
func (d document) clusterServers() map[string]string {
	servers := make(map[string]string)
	for _, item := range listField(d, "clusters") {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringField(entry, "name")
		if name == "" {
			continue
		}
		if _, dup := servers[name]; dup {
			continue
		}
		servers[name] = stringField(mapField(entry, "cluster"), "server")
	}
	return servers
}

func listField(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	list, _ := m[key].([]interface{})
	return list
}

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]interface{})
	return v
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
