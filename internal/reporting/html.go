package reporting

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/SSAM36/jhc-fnl/internal/models"
)

const htmlHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ddd; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #f5f5f5; }
h1, h2 { border-bottom: 1px solid #eee; padding-bottom: 0.3rem; }
</style>
</head>
<body>
`

const htmlFooter = "</body>\n</html>\n"

// FormatHTMLReport renders a council result as a standalone HTML page. The
// markdown report is the single source of report content; this just
// converts it.
func FormatHTMLReport(result *models.CouncilResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(FormatMarkdownReport(result)), &body); err != nil {
		return "", fmt.Errorf("rendering HTML report: %w", err)
	}

	title := "Council Report"
	if result.Query != "" {
		title = "Council Report — " + result.Query
	}

	return fmt.Sprintf(htmlHeader, html.EscapeString(title)) + body.String() + htmlFooter, nil
}
