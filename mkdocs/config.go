package mkdocs

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig parses an mkdocs.yml file into a plain value tree of strings,
// numbers, booleans, lists, and string-keyed maps. Embedded executable
// object tags (PyYAML python/ tags, commonly used for emoji handlers) are
// replaced with nil rather than evaluated.
func LoadConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	value := nodeValue(&root)
	config, ok := value.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return config, nil
}

// nodeValue converts a yaml.Node into a tagged-variant value with explicit
// recursive matching. Nodes carrying python/ object tags become nil.
func nodeValue(n *yaml.Node) any {
	if n == nil {
		return nil
	}
	if strings.Contains(n.Tag, "python/") {
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return nodeValue(n.Content[0])

	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			m[key] = nodeValue(n.Content[i+1])
		}
		return m

	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			s = append(s, nodeValue(child))
		}
		return s

	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				return n.Value
			}
			return b
		case "!!int":
			i, err := strconv.Atoi(n.Value)
			if err != nil {
				return n.Value
			}
			return i
		case "!!float":
			f, err := strconv.ParseFloat(n.Value, 64)
			if err != nil {
				return n.Value
			}
			return f
		default:
			return n.Value
		}

	case yaml.AliasNode:
		return nodeValue(n.Alias)
	}

	return nil
}
