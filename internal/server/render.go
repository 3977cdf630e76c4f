package server

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdown converts report markdown to HTML. Tables and strikethrough from
// GitHub-flavoured markdown are enabled; raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// renderReportPage wraps a rendered markdown document in a minimal HTML page.
func renderReportPage(title, source string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return nil, fmt.Errorf("markdown render failed: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"sk\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:860px;margin:2rem auto;padding:0 1rem;line-height:1.6}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:.3rem .6rem}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), nil
}
