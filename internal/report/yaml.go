package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"terroir/internal/importer"
	"terroir/internal/parser"
)

// WriteYAML renders pv as block-style YAML. The preview goes through its JSON
// form first so key names and order match the JSON report exactly.
func WriteYAML(w io.Writer, pv *importer.Preview) error {
	b, err := parser.Marshal(pv)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return fmt.Errorf("converting preview to yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// blockStyle clears the flow and quoting styles that decoding JSON leaves on
// every node. Empty collections stay in flow style so they print as [] and {}.
func blockStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		if len(n.Content) > 0 {
			n.Style = 0
		}
	case yaml.ScalarNode:
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}
