package epub

import (
	"bytes"
	"encoding/xml"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Package documents (OPF/NCX) are XML and rendered with text/template plus
// an explicit xml escape helper; content pages and the nav document are
// XHTML and rendered with html/template (bodies injected as template.HTML,
// since they are already rendered and sanitized markup).

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}

var xmlFuncs = texttemplate.FuncMap{"xml": xmlEscape}

const opfTemplate = `<?xml version="1.0" encoding="utf-8"?>
<package version="3.0" unique-identifier="package-id" xmlns="http://www.idpf.org/2007/opf" xml:lang="{{xml .Language}}">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="package-id">{{xml .Identifier}}</dc:identifier>
    <dc:title>{{xml .Project}}</dc:title>
    <dc:language>{{xml .Language}}</dc:language>
    <meta property="dcterms:modified">{{xml .Timestamp}}</meta>
    <meta name="generator" content="epubpack"/>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="nav" href="nav.html" media-type="application/xhtml+xml" properties="nav"/>
    <item id="title" href="title.html" media-type="application/xhtml+xml"/>
    <item id="epub-css" href="css/epub.css" media-type="text/css"/>
{{- if .LogoFile}}
    <item id="logo" href="assets/{{xml .LogoFile}}" media-type="{{xml .LogoMediaType}}"/>
{{- end}}
{{- range .Pages}}
    <item id="{{xml .ItemID}}" href="modules/{{xml .Stem}}.html" media-type="application/xhtml+xml"/>
{{- end}}
  </manifest>
  <spine toc="ncx">
    <itemref idref="title"/>
    <itemref idref="nav"/>
{{- range .Pages}}
    <itemref idref="{{xml .ItemID}}"/>
{{- end}}
  </spine>
</package>
`

const ncxTemplate = `<?xml version="1.0" encoding="utf-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1" xml:lang="{{xml .Language}}">
  <head>
    <meta name="dtb:uid" content="{{xml .Identifier}}"/>
    <meta name="dtb:depth" content="1"/>
    <meta name="dtb:totalPageCount" content="0"/>
    <meta name="dtb:maxPageNumber" content="0"/>
  </head>
  <docTitle>
    <text>{{xml .Project}} v{{xml .Version}}</text>
  </docTitle>
  <navMap>
    <navPoint id="navpoint-title" playOrder="1">
      <navLabel><text>{{xml .Project}}</text></navLabel>
      <content src="title.html"/>
    </navPoint>
{{- range $i, $p := .Pages}}
    <navPoint id="navpoint-{{$p.ItemID}}" playOrder="{{playOrder $i}}">
      <navLabel><text>{{xml $p.Title}}</text></navLabel>
      <content src="modules/{{xml $p.Stem}}.html"/>
    </navPoint>
{{- end}}
  </navMap>
</ncx>
`

const navTemplate = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{.Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{.Project}} - Table of contents</title>
  <link rel="stylesheet" type="text/css" href="css/epub.css"/>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of contents</h1>
    <ol>
      <li><a href="title.html">{{.Project}}</a></li>
{{- range .Pages}}
      <li><a href="modules/{{.Stem}}.html">{{.Title}}</a></li>
{{- end}}
    </ol>
  </nav>
</body>
</html>
`

const titleTemplate = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="{{.Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{.Project}}</title>
  <link rel="stylesheet" type="text/css" href="css/epub.css"/>
</head>
<body>
  <section class="title-page">
{{- if .LogoFile}}
    <img src="assets/{{.LogoFile}}" alt="{{.Project}} logo" class="logo"/>
{{- end}}
    <h1>{{.Project}}</h1>
    <h2>v{{.Version}}</h2>
  </section>
</body>
</html>
`

const nodePageTemplate = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="{{.Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{.Title}}</title>
  <link rel="stylesheet" type="text/css" href="../css/epub.css"/>
</head>
<body>
  <section class="content" id="{{.ID}}">
    <h1>{{.Title}} <small>{{.Category}}</small></h1>
{{.Body}}
  </section>
</body>
</html>
`

const extraPageTemplate = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="{{.Language}}">
<head>
  <meta charset="utf-8"/>
  <title>{{.Title}}</title>
  <link rel="stylesheet" type="text/css" href="../css/epub.css"/>
</head>
<body>
  <section class="content extra">
    <h1>{{.Title}}</h1>
{{.Body}}
  </section>
</body>
</html>
`

var (
	opfTpl = texttemplate.Must(texttemplate.New("opf").Funcs(xmlFuncs).Parse(opfTemplate))
	ncxTpl = texttemplate.Must(texttemplate.New("ncx").Funcs(texttemplate.FuncMap{
		"xml": xmlEscape,
		// playOrder is 1-based with the title page occupying slot 1.
		"playOrder": func(i int) int { return i + 2 },
	}).Parse(ncxTemplate))
	navTpl   = htmltemplate.Must(htmltemplate.New("nav").Parse(navTemplate))
	titleTpl = htmltemplate.Must(htmltemplate.New("title").Parse(titleTemplate))
	nodeTpl  = htmltemplate.Must(htmltemplate.New("node").Parse(nodePageTemplate))
	extraTpl = htmltemplate.Must(htmltemplate.New("extra").Parse(extraPageTemplate))
)

type nodePageData struct {
	Language string
	Title    string
	ID       string
	Category string
	Body     string // pre-rendered markup, injected unescaped
}

type extraPageData struct {
	Language string
	Title    string
	Body     string // pre-rendered markup, injected unescaped
}

type nodePageView struct {
	Language string
	Title    string
	ID       string
	Category string
	Body     htmltemplate.HTML
}

type extraPageView struct {
	Language string
	Title    string
	Body     htmltemplate.HTML
}

func renderOPF(data ManifestData) (string, error) {
	var buf bytes.Buffer
	if err := opfTpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render content.opf: %w", err)
	}
	return buf.String(), nil
}

func renderNCX(data ManifestData) (string, error) {
	var buf bytes.Buffer
	if err := ncxTpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render toc.ncx: %w", err)
	}
	return buf.String(), nil
}

func renderNav(data ManifestData) (string, error) {
	var buf bytes.Buffer
	if err := navTpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render nav.html: %w", err)
	}
	return buf.String(), nil
}

func renderTitle(data ManifestData) (string, error) {
	var buf bytes.Buffer
	if err := titleTpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render title.html: %w", err)
	}
	return buf.String(), nil
}

func renderNodePage(data nodePageData) (string, error) {
	var buf bytes.Buffer
	view := nodePageView{
		Language: data.Language,
		Title:    data.Title,
		ID:       data.ID,
		Category: data.Category,
		Body:     htmltemplate.HTML(data.Body), //nolint:gosec // body is rendered by our own markdown pipeline
	}
	if err := nodeTpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render node page %s: %w", data.ID, err)
	}
	return buf.String(), nil
}

func renderExtraPage(data extraPageData) (string, error) {
	var buf bytes.Buffer
	view := extraPageView{
		Language: data.Language,
		Title:    data.Title,
		Body:     htmltemplate.HTML(data.Body), //nolint:gosec // body is rendered by our own markdown pipeline
	}
	if err := extraTpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render extra page %s: %w", data.Title, err)
	}
	return buf.String(), nil
}
