package apidoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

var uiPage = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => { window.ui = SwaggerUIBundle({ url: {{.SpecURL}}, dom_id: "#swagger-ui" }); };
  </script>
</body>
</html>
`))

// Handler serves the API document. The document is encoded once, up front.
type Handler struct {
	jsonDoc []byte
	yamlDoc []byte
	ui      []byte
}

// NewHandler encodes doc as JSON and YAML and renders the UI page.
func NewHandler(doc *Document) (*Handler, error) {
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode API document as JSON: %w", err)
	}
	yamlDoc, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode API document as YAML: %w", err)
	}
	var ui bytes.Buffer
	if err := uiPage.Execute(&ui, map[string]string{"Title": doc.Info.Title, "SpecURL": "/docs/openapi.json"}); err != nil {
		return nil, fmt.Errorf("failed to render API docs page: %w", err)
	}
	return &Handler{
		jsonDoc: jsonDoc,
		yamlDoc: yamlDoc,
		ui:      ui.Bytes(),
	}, nil
}

// Routes mounts the UI and both encodings of the document.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.UI)
	r.Get("/openapi.json", h.JSON)
	r.Get("/openapi.yaml", h.YAML)
}

func (h *Handler) UI(w http.ResponseWriter, _ *http.Request) {
	write(w, "text/html; charset=utf-8", h.ui)
}

func (h *Handler) JSON(w http.ResponseWriter, _ *http.Request) {
	write(w, "application/json", h.jsonDoc)
}

func (h *Handler) YAML(w http.ResponseWriter, _ *http.Request) {
	write(w, "application/yaml", h.yamlDoc)
}

func write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
