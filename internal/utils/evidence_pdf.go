package utils

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// EvidenceDocument : contenu d'une preuve générée prête à imprimer
type EvidenceDocument struct {
	Title      string
	DisputeRef string
	Amount     string
	Reason     string
	Content    string
	CreatedAt  time.Time
}

var evidenceTemplate = template.Must(template.New("evidence").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, 'Times New Roman', serif; margin: 48px; color: #1f2937; }
  h1 { font-size: 22px; margin: 0 0 8px 0; }
  .meta { font-size: 12px; color: #6b7280; margin-bottom: 28px; }
  .meta span { margin-right: 18px; }
  .content { white-space: pre-wrap; font-size: 14px; line-height: 1.6; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">
    {{if .DisputeRef}}<span>Dispute: {{.DisputeRef}}</span>{{end}}
    {{if .Amount}}<span>Amount: {{.Amount}}</span>{{end}}
    {{if .Reason}}<span>Reason: {{.Reason}}</span>{{end}}
    <span>Date: {{.CreatedAt.Format "2006-01-02"}}</span>
  </div>
  <div class="content">{{.Content}}</div>
</body>
</html>`))

// RenderEvidenceHTML produit la page HTML (contenu échappé)
func RenderEvidenceHTML(doc EvidenceDocument) (string, error) {
	var buf bytes.Buffer
	if err := evidenceTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PDFRenderer imprime les preuves via Chrome headless
type PDFRenderer struct {
	timeout time.Duration
}

func NewPDFRenderer(timeout time.Duration) *PDFRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{timeout: timeout}
}

func (r *PDFRenderer) RenderEvidencePDF(ctx context.Context, doc EvidenceDocument) ([]byte, error) {
	html, err := RenderEvidenceHTML(doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	// timeout pour éviter de bloquer
	ctx, cancel = context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var pdfBuf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
