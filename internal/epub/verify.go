package epub

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// The verification pass re-parses staged pages and reports any id attribute
// or internal href fragment that escaped sanitization. Findings are
// warnings: the archive is still produced, but the report flags the pages.

var allowedIdentifier = regexp.MustCompile(`^[A-Za-z0-9_.-]*$`)

// VerifyStagedPages walks every staged .html file and returns one finding
// per offending attribute, formatted as "<relpath>: <description>".
func VerifyStagedPages(root string) ([]string, error) {
	var findings []string
	err := filepath.WalkDir(filepath.Join(root, oebpsDir), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk staged pages: %w", err)
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		f, openErr := os.Open(filepath.Clean(path))
		if openErr != nil {
			return fmt.Errorf("open staged page: %w", openErr)
		}
		defer func() { _ = f.Close() }()

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		pageFindings, parseErr := verifyPage(f)
		if parseErr != nil {
			return fmt.Errorf("parse staged page %s: %w", rel, parseErr)
		}
		for _, pf := range pageFindings {
			findings = append(findings, filepath.ToSlash(rel)+": "+pf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// verifyPage parses one page and collects invalid ids and fragments.
func verifyPage(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var findings []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				switch attr.Key {
				case "id":
					if !allowedIdentifier.MatchString(attr.Val) {
						findings = append(findings, fmt.Sprintf("invalid id %q on <%s>", attr.Val, n.Data))
					}
				case "href":
					if isExternalLink(attr.Val) {
						continue
					}
					if hash := strings.Index(attr.Val, "#"); hash >= 0 {
						frag := attr.Val[hash+1:]
						if !allowedIdentifier.MatchString(frag) {
							findings = append(findings, fmt.Sprintf("invalid fragment %q on <%s>", frag, n.Data))
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return findings, nil
}
