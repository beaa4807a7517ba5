package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/example/tienda/pkg/models"
)

const textBody = `Hola,

El estado de tu pedido #{{.ID}} cambió a: {{.Status}}.
{{- if .ShippedAt}}
Fecha de envío: {{.ShippedAt.Format "02/01/2006"}}
{{- end}}
{{- if .DeliveredAt}}
Fecha de entrega: {{.DeliveredAt.Format "02/01/2006"}}
{{- end}}

Productos:
{{- range .Lines}}
  - {{.Name}} x{{.Quantity}} ${{printf "%.2f" .Price}}
{{- end}}

Total: ${{printf "%.2f" .Total}}
`

const htmlBody = `<p>Hola,</p>
<p>El estado de tu pedido <strong>#{{.ID}}</strong> cambió a: <strong>{{.Status}}</strong>.</p>
{{- if .ShippedAt}}
<p>Fecha de envío: {{.ShippedAt.Format "02/01/2006"}}</p>
{{- end}}
{{- if .DeliveredAt}}
<p>Fecha de entrega: {{.DeliveredAt.Format "02/01/2006"}}</p>
{{- end}}
<ul>
{{- range .Lines}}
  <li>{{.Name}} x{{.Quantity}} ${{printf "%.2f" .Price}}</li>
{{- end}}
</ul>
<p>Total: ${{printf "%.2f" .Total}}</p>
`

var (
	textTmpl = template.Must(template.New("status.txt").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("status.html").Parse(htmlBody))
)

// StatusEmail renders the order status notification for to.
func StatusEmail(to string, order *models.Order) (Message, error) {
	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, order); err != nil {
		return Message{}, fmt.Errorf("failed to render text email: %w", err)
	}
	if err := htmlTmpl.Execute(&html, order); err != nil {
		return Message{}, fmt.Errorf("failed to render html email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Tu pedido #%d está %s", order.ID, order.Status),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
