// Package export turns a report's markdown into downloadable artifacts: a
// print-ready HTML document for the browser's PDF path, and the verbatim
// markdown bytes. Both are pure transformations with no network dependency.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

const docTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Georgia, serif; color: #222; max-width: 46em; margin: 2em auto; line-height: 1.5; }
h1 { font-size: 1.6em; border-bottom: 2px solid #222; padding-bottom: 0.2em; }
h2 { font-size: 1.3em; margin-top: 1.4em; }
h3 { font-size: 1.1em; margin-top: 1.2em; }
hr { border: none; border-top: 1px solid #999; margin: 2em 0; }
@media print {
  body { margin: 0; max-width: none; }
  h1, h2, h3 { break-after: avoid; }
}
</style>
</head>
<body>
%s</body>
</html>
`

// HTMLDocument renders report markdown as a standalone print-ready HTML
// page: #/##/### headings become h1/h2/h3, blank-line-separated runs become
// paragraphs, and --- lines become rules. Input that fails markdown
// conversion is carried verbatim in a <pre> block instead.
func HTMLDocument(markdown, title string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		buf.Reset()
		buf.WriteString("<pre>" + html.EscapeString(markdown) + "</pre>\n")
	}
	return fmt.Sprintf(docTemplate, html.EscapeString(title), buf.String())
}

// WriteMarkdown writes the report bytes verbatim to path.
func WriteMarkdown(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing markdown export: %w", err)
	}
	return nil
}

// Filename builds a dated export filename like "report-2026-08-31.md".
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}
