// Package docmodel defines the documentation node model consumed by the
// packaging pipeline: nodes carry a stable id (used as the output filename
// stem), a display title, a category, and a markdown doc body.
package docmodel

import (
	"fmt"
	"strings"
)

// Category classifies a documentation node for spine grouping.
type Category string

const (
	CategoryModule    Category = "modules"
	CategoryException Category = "exceptions"
	CategoryProtocol  Category = "protocols"
)

// Categories lists all node categories in spine order.
var Categories = []Category{CategoryModule, CategoryException, CategoryProtocol}

// NormalizeCategory maps a raw string to a Category. Unknown or empty values
// default to modules so hand-written manifests stay forgiving.
func NormalizeCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CategoryException), "exception":
		return CategoryException
	case string(CategoryProtocol), "protocol":
		return CategoryProtocol
	default:
		return CategoryModule
	}
}

// Node is a single documentation entity. It is owned by the caller and
// read-only to the packaging pipeline.
type Node struct {
	// ID is the stable identifier; it becomes the output filename stem
	// (OEBPS/modules/<ID>.html).
	ID string
	// Title is the display title; empty falls back to ID.
	Title string
	// Category groups the node into one of the three spine sections.
	Category Category
	// Doc is the markdown documentation body.
	Doc string
}

// DisplayTitle returns the title, falling back to the id.
func (n Node) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// ByCategory returns the nodes of the given category, preserving input order.
func ByCategory(nodes []Node, c Category) []Node {
	var out []Node
	for _, n := range nodes {
		if n.Category == c {
			out = append(out, n)
		}
	}
	return out
}

// ValidateNodes checks ids are present and unique across the whole set.
func ValidateNodes(nodes []Node) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("node %d: id is required", i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id: %s", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}
