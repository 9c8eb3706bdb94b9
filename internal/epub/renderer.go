package epub

import (
	"regexp"

	"git.home.luguber.info/inful/epubpack/internal/config"
	"git.home.luguber.info/inful/epubpack/internal/docmodel"
	"git.home.luguber.info/inful/epubpack/internal/markdown"
)

// TemplateRenderer maps configuration plus node(s) to markup strings. The
// pipeline consumes the capability; DefaultRenderer is the built-in
// template-backed implementation.
type TemplateRenderer interface {
	NodePage(node docmodel.Node, all []docmodel.Node) (string, error)
	ExtraPage(title, body string) (string, error)
	Manifest(data ManifestData) (string, error)
	TOC(data ManifestData) (string, error)
	Nav(data ManifestData) (string, error)
	TitlePage(data ManifestData) (string, error)
}

// Autolinker expands references to known nodes inside rendered markup into
// links between pages.
type Autolinker interface {
	Expand(markup string, nodes []docmodel.Node) string
}

// AssetProvisioner populates the staging tree with static assets
// (stylesheet, container descriptor, optional logo).
type AssetProvisioner interface {
	Provision(s *Staging, cfg *config.Config) error
}

// PageRef describes one content page for manifest/navigation rendering.
type PageRef struct {
	Stem   string // filename stem under OEBPS/modules/
	Title  string
	ItemID string // manifest item id, sanitized
}

// ManifestData is the shared input of the manifest, toc, nav and title
// renders. Identifier and Timestamp are fixed once per run.
type ManifestData struct {
	Identifier    string // urn:uuid form
	Timestamp     string
	Project       string
	Version       string
	Language      string
	LogoFile      string // filename under OEBPS/assets/, empty when no logo
	LogoMediaType string
	Pages         []PageRef
}

// DefaultRenderer renders pages and package documents from built-in
// templates, converting node markdown bodies with goldmark.
type DefaultRenderer struct {
	cfg *config.Config
}

// NewDefaultRenderer constructs the built-in renderer.
func NewDefaultRenderer(cfg *config.Config) *DefaultRenderer {
	return &DefaultRenderer{cfg: cfg}
}

func (r *DefaultRenderer) NodePage(node docmodel.Node, _ []docmodel.Node) (string, error) {
	body, err := markdown.Render([]byte(node.Doc))
	if err != nil {
		return "", err
	}
	return renderNodePage(nodePageData{
		Language: r.cfg.Language,
		Title:    node.DisplayTitle(),
		ID:       node.ID,
		Category: string(node.Category),
		Body:     body,
	})
}

func (r *DefaultRenderer) ExtraPage(title, body string) (string, error) {
	return renderExtraPage(extraPageData{
		Language: r.cfg.Language,
		Title:    title,
		Body:     body,
	})
}

func (r *DefaultRenderer) Manifest(data ManifestData) (string, error)  { return renderOPF(data) }
func (r *DefaultRenderer) TOC(data ManifestData) (string, error)       { return renderNCX(data) }
func (r *DefaultRenderer) Nav(data ManifestData) (string, error)       { return renderNav(data) }
func (r *DefaultRenderer) TitlePage(data ManifestData) (string, error) { return renderTitle(data) }

// codeRef matches inline code elements whose content looks like a node id.
var codeRef = regexp.MustCompile(`<code[^>]*>([A-Za-z0-9_.]+)</code>`)

// CodeAutolinker links <code>Node.ID</code> occurrences to the node's page.
// All pages live flat under OEBPS/modules/, so a bare "<id>.html" href works
// from any page.
type CodeAutolinker struct{}

func (CodeAutolinker) Expand(markup string, nodes []docmodel.Node) string {
	if len(nodes) == 0 {
		return markup
	}
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	return codeRef.ReplaceAllStringFunc(markup, func(m string) string {
		sub := codeRef.FindStringSubmatch(m)
		if _, known := ids[sub[1]]; !known {
			return m
		}
		return `<a href="` + sub[1] + `.html">` + m + `</a>`
	})
}

// NoopAutolinker leaves markup unchanged.
type NoopAutolinker struct{}

func (NoopAutolinker) Expand(markup string, _ []docmodel.Node) string { return markup }
