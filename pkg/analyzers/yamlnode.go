package analyzers

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// mapping returns the mapping under a document node, or nil.
func mapping(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

// lookup returns the key and value nodes for key in a mapping.
func lookup(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

// get follows a path of mapping keys.
func get(m *yaml.Node, path ...string) *yaml.Node {
	for _, key := range path {
		_, m = lookup(m, key)
		if m == nil {
			return nil
		}
	}
	return m
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func isTrue(n *yaml.Node) bool {
	return strings.EqualFold(scalar(n), "true")
}

// imageTag returns the tag of an image reference, "" when untagged, and
// whether the reference is pinned by digest.
func imageTag(image string) (tag string, digest bool) {
	if strings.Contains(image, "@") {
		return "", true
	}
	slash := strings.LastIndex(image, "/")
	if i := strings.LastIndex(image, ":"); i > slash {
		return image[i+1:], false
	}
	return "", false
}
