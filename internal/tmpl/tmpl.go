package tmpl

import (
	"bytes"
	"fmt"
	"html/template"

	"signaly.chapter42.de/a/internal/data"
)

func PrepareTemplates(cfg *data.SignalyConfig) error {
	feed := &cfg.Feed // Pointer nötig, um Änderungen zu speichern

	bulkTpl, err := template.New("bulk").Parse(feed.Endpoints.Bulk)
	if err != nil {
		return fmt.Errorf("error in bulk endpoint template: %w", err)
	}
	gistTpl, err := template.New("gist").Parse(feed.Endpoints.Gist)
	if err != nil {
		return fmt.Errorf("error in gist endpoint template: %w", err)
	}

	feed.ParsedBulkTpl = bulkTpl
	feed.ParsedGistTpl = gistTpl

	return nil
}

func RenderEndpoint(tpl *template.Template, v any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
