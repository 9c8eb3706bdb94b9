package epub

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/epubpack/internal/config"
)

//go:embed assets/epub.css
var defaultStylesheet []byte

// containerXML is the fixed META-INF descriptor pointing readers at the
// package manifest.
const containerXML = `<?xml version="1.0" encoding="utf-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// DefaultAssets provisions the stylesheet, the container descriptor and the
// optional logo into the staging tree.
type DefaultAssets struct{}

func (DefaultAssets) Provision(s *Staging, cfg *config.Config) error {
	if err := os.WriteFile(s.MetaInfPath("container.xml"), []byte(containerXML), 0o640); err != nil {
		return fmt.Errorf("write container.xml: %w", err)
	}
	if err := os.WriteFile(s.OEBPSPath(cssDir, "epub.css"), defaultStylesheet, 0o640); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	if cfg.Logo != "" {
		data, err := os.ReadFile(cfg.Logo)
		if err != nil {
			return fmt.Errorf("read logo %s: %w", cfg.Logo, err)
		}
		name := LogoFileName(cfg.Logo)
		if err := os.WriteFile(s.OEBPSPath(assetsDir, name), data, 0o640); err != nil {
			return fmt.Errorf("copy logo: %w", err)
		}
	}
	return nil
}

// LogoFileName returns the staged filename for a configured logo
// ("logo" plus the source extension, lowercased).
func LogoFileName(logoPath string) string {
	return "logo" + strings.ToLower(filepath.Ext(logoPath))
}

// LogoMediaType maps a staged logo filename to its manifest media type.
func LogoMediaType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
