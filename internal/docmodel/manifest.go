package docmodel

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// manifestFile is the YAML shape of a node manifest.
type manifestFile struct {
	Nodes []manifestNode `yaml:"nodes"`
}

type manifestNode struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title,omitempty"`
	Category string `yaml:"category,omitempty"`
	// Doc is an inline markdown body.
	Doc string `yaml:"doc,omitempty"`
	// DocFile points at a markdown file, resolved relative to the manifest.
	DocFile string `yaml:"doc_file,omitempty"`
}

// LoadManifest reads a node manifest and returns the node set in file order.
// doc_file paths are resolved relative to the manifest's directory; an inline
// doc and a doc_file on the same node is an error.
func LoadManifest(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read node manifest: %w", err)
	}

	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse node manifest: %w", err)
	}

	baseDir := filepath.Dir(path)
	nodes := make([]Node, 0, len(mf.Nodes))
	for _, mn := range mf.Nodes {
		doc := mn.Doc
		if mn.DocFile != "" {
			if mn.Doc != "" {
				return nil, fmt.Errorf("node %s: doc and doc_file are mutually exclusive", mn.ID)
			}
			raw, err := os.ReadFile(filepath.Join(baseDir, mn.DocFile))
			if err != nil {
				return nil, fmt.Errorf("node %s: read doc_file: %w", mn.ID, err)
			}
			doc = string(raw)
		}
		nodes = append(nodes, Node{
			ID:       mn.ID,
			Title:    mn.Title,
			Category: NormalizeCategory(mn.Category),
			Doc:      doc,
		})
	}

	if err := ValidateNodes(nodes); err != nil {
		return nil, fmt.Errorf("node manifest %s: %w", path, err)
	}
	return nodes, nil
}
