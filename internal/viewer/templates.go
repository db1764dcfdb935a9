package viewer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var documentTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"pct": func(n int) string { return fmt.Sprintf("%d%%", n) },
	}

	templateContent, err := templateFS.ReadFile("templates/viewer.html")
	if err != nil {
		// Fallback to built-in template if file not found
		documentTemplate = template.Must(template.New("viewer").Funcs(funcMap).Parse(fallbackTemplate))
		return
	}

	documentTemplate = template.Must(template.New("viewer").Funcs(funcMap).Parse(string(templateContent)))
}

func renderTemplate(data documentData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackTemplate is used if the embedded template fails to load
const fallbackTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Profile.Bio}}</p>
  {{range .Projects}}<div><h2>{{.Title}}</h2><p>{{.DescriptionShort}}</p></div>{{end}}
  {{range .Progress}}<div><h2>{{.Title}}</h2><p>{{.StatusLabel}} {{pct .Percent}}</p></div>{{end}}
  <footer>This file is read-only.</footer>
</body>
</html>`
