package config

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"gopkg.in/yaml.v3"
)

// ReadRawConfig reads the configuration file as raw YAML text, preserving comments.
func ReadRawConfig(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to read config file")
	}
	return b, nil
}

// WriteRawConfig writes raw YAML content to the configuration file.
func WriteRawConfig(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return errors.Wrap(err, "config: failed to write config file")
	}
	return nil
}

// MergeConfigWithRaw renders cfg on top of the node tree parsed from rawYAML
// so that comments and key order of the original file survive a rewrite.
func MergeConfigWithRaw(rawYAML []byte, cfg *Configuration) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(rawYAML, &root); err != nil || len(root.Content) == 0 {
		return yaml.Marshal(cfg)
	}

	var updated yaml.Node
	if err := updated.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "config: failed to encode updated config")
	}

	mergeNodes(root.Content[0], &updated)

	b, err := yaml.Marshal(&root)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to marshal merged config")
	}
	return b, nil
}

// mergeNodes copies values from src into dst. Mapping keys missing from dst
// are appended, scalars are overwritten in place so their comments are kept.
func mergeNodes(dst, src *yaml.Node) {
	if dst == nil || src == nil {
		return
	}
	switch {
	case dst.Kind == yaml.MappingNode && src.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(src.Content); i += 2 {
			key, value := src.Content[i], src.Content[i+1]
			if existing := lookup(dst, key.Value); existing != nil {
				mergeNodes(existing, value)
				continue
			}
			dst.Content = append(dst.Content, key, value)
		}
	case dst.Kind == src.Kind && dst.Kind == yaml.ScalarNode:
		dst.Value = src.Value
		dst.Tag = src.Tag
		dst.Style = src.Style
	default:
		dst.Kind = src.Kind
		dst.Tag = src.Tag
		dst.Value = src.Value
		dst.Content = src.Content
	}
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// SetValue writes a single scalar into the YAML document at a dot separated
// path (e.g. "api.port"), creating intermediate mappings as needed. The value
// is written verbatim and YAML decides its type when the file is next loaded.
func SetValue(rawYAML []byte, path string, value string) ([]byte, error) {
	var root yaml.Node
	if len(rawYAML) > 0 {
		if err := yaml.Unmarshal(rawYAML, &root); err != nil {
			return nil, errors.Wrap(err, "config: failed to parse config file")
		}
	}
	if len(root.Content) == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	node := root.Content[0]
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if part == "" {
			return nil, errors.Errorf("config: invalid key %q", path)
		}
		if node.Kind != yaml.MappingNode {
			return nil, errors.Errorf("config: %q is not a mapping", strings.Join(parts[:i], "."))
		}
		next := lookup(node, part)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			if i == len(parts)-1 {
				next = &yaml.Node{Kind: yaml.ScalarNode}
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part}, next)
		}
		node = next
	}
	node.Kind = yaml.ScalarNode
	node.Tag = ""
	node.Content = nil
	node.Value = value

	b, err := yaml.Marshal(&root)
	if err != nil {
		return nil, errors.Wrap(err, "config: failed to marshal config")
	}
	return b, nil
}
