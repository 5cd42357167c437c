package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// writeDataYAML emits the dataset descriptor:
//
//	<split>: images/<split>
//	nc: <class count>
//	names: [...]
//
// Built as an explicit mapping node so split keys keep the tile
// generation order instead of Go's random map order.
func writeDataYAML(path string, splits, classNames []string) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, split := range splits {
		appendScalar(root, split)
		appendScalar(root, fmt.Sprintf("images/%s", split))
	}
	appendScalar(root, "nc")
	root.Content = append(root.Content, &yaml.Node{
		Kind:  yaml.ScalarNode,
		Value: fmt.Sprintf("%d", len(classNames)),
		Tag:   "!!int",
	})
	appendScalar(root, "names")
	names := &yaml.Node{Kind: yaml.SequenceNode}
	for _, name := range classNames {
		appendScalar(names, name)
	}
	root.Content = append(root.Content, names)

	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("marshaling data.yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func appendScalar(n *yaml.Node, value string) {
	n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
}
