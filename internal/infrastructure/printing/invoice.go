package printing

import (
	"bytes"
	"context"
	"html/template"

	"go.uber.org/zap"

	"github.com/paydesk/backend/internal/domain/invoicing"
)

// CompanyInfo is the seller block printed on every invoice.
type CompanyInfo struct {
	Name    string
	Address []string
	Phone   string
	Email   string
}

// InvoicePrinter turns an invoice aggregate into a printable PDF.
type InvoicePrinter struct {
	renderer PDFRenderer
	company  CompanyInfo
	tmpl     *template.Template
	logger   *zap.Logger
}

// NewInvoicePrinter creates an InvoicePrinter backed by the given renderer.
func NewInvoicePrinter(renderer PDFRenderer, company CompanyInfo, logger *zap.Logger) *InvoicePrinter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoicePrinter{
		renderer: renderer,
		company:  company,
		tmpl:     template.Must(template.New("invoice").Parse(invoiceTemplate)),
		logger:   logger,
	}
}

// PrintInvoice renders the invoice as a PDF document.
func (p *InvoicePrinter) PrintInvoice(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	html, err := p.BuildHTML(inv)
	if err != nil {
		return nil, err
	}

	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:  html,
		Title: "Invoice " + inv.Number,
	})
	if err != nil {
		p.logger.Error("invoice PDF rendering failed",
			zap.String("number", inv.Number), zap.Error(err))
		return nil, err
	}

	return result.PDFData, nil
}

// BuildHTML produces the invoice HTML fed to the PDF renderer.
func (p *InvoicePrinter) BuildHTML(inv *invoicing.Invoice) (string, error) {
	data := invoiceView{
		Company:     p.company,
		Number:      inv.Number,
		InvoiceDate: inv.InvoiceDate.Format("02/01/2006"),
		DueDate:     inv.DueDate.Format("02/01/2006"),
		Buyer:       inv.Buyer,
		Total:       "Rs." + inv.Total.StringFixed(2),
		AmountPaid:  "Rs." + inv.AmountPaid.StringFixed(2),
		Balance:     "Rs." + inv.Balance.StringFixed(2),
		Status:      inv.Status.String(),
		Notes:       inv.Notes,
		Terms:       inv.Terms,
	}
	for _, item := range inv.Items {
		data.Items = append(data.Items, invoiceItemView{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Rate:        "Rs." + item.Rate.StringFixed(2),
			Amount:      "Rs." + item.Amount.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice template execution failed", err)
	}
	return buf.String(), nil
}

type invoiceView struct {
	Company     CompanyInfo
	Number      string
	InvoiceDate string
	DueDate     string
	Buyer       invoicing.BuyerDetails
	Items       []invoiceItemView
	Total       string
	AmountPaid  string
	Balance     string
	Status      string
	Notes       string
	Terms       string
}

type invoiceItemView struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #000; margin: 0; font-size: 13px; }
  .header { display: flex; justify-content: space-between; align-items: flex-start; border-bottom: 2px solid #000; padding-bottom: 16px; }
  .header h1 { font-size: 38px; margin: 0; }
  .header .number { font-weight: bold; font-size: 14px; }
  .dates { text-align: right; }
  .dates .label { font-size: 10px; color: #646464; text-transform: uppercase; }
  .dates .value { font-weight: bold; margin-bottom: 8px; }
  .parties { display: flex; margin-top: 20px; }
  .parties .col { width: 50%; }
  .parties .label { font-size: 10px; font-weight: bold; color: #505050; text-transform: uppercase; }
  .parties .name { font-weight: bold; font-size: 14px; margin: 6px 0 4px; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 28px; }
  table.items th { font-size: 10px; text-transform: uppercase; color: #323232; text-align: left; border-bottom: 2px solid #000; padding: 6px 4px; }
  table.items th.num, table.items td.num { text-align: right; }
  table.items td { padding: 8px 4px; border-bottom: 1px solid #dcdcdc; }
  table.items td.amount { font-weight: bold; }
  .totals { margin-top: 24px; margin-left: auto; width: 45%; }
  .totals .row { display: flex; justify-content: space-between; padding: 5px 0; }
  .totals .row.total { border-top: 2px solid #000; font-size: 15px; font-weight: bold; }
  .totals .row.balance { color: #b00000; font-weight: bold; }
  .footer { display: flex; margin-top: 36px; border-top: 1px solid #dcdcdc; padding-top: 14px; }
  .footer .col { width: 50%; }
  .footer .label { font-size: 10px; font-weight: bold; color: #323232; text-transform: uppercase; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>INVOICE</h1>
      <div class="number">#{{.Number}}</div>
    </div>
    <div class="dates">
      <div class="label">Invoice Date</div>
      <div class="value">{{.InvoiceDate}}</div>
      <div class="label">Due Date</div>
      <div class="value">{{.DueDate}}</div>
    </div>
  </div>

  <div class="parties">
    <div class="col">
      <div class="label">From</div>
      <div class="name">{{.Company.Name}}</div>
      {{range .Company.Address}}<div>{{.}}</div>{{end}}
      <div>{{.Company.Phone}}</div>
      <div>{{.Company.Email}}</div>
    </div>
    <div class="col">
      <div class="label">Bill To</div>
      <div class="name">{{.Buyer.Name}}</div>
      <div>{{.Buyer.Address}}</div>
      <div>{{.Buyer.Phone}}</div>
      {{if .Buyer.Email}}<div>{{.Buyer.Email}}</div>{{end}}
    </div>
  </div>

  <table class="items">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Qty</th>
        <th class="num">Rate</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{.Rate}}</td>
        <td class="num amount">{{.Amount}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{.Total}}</span></div>
    <div class="row"><span>Amount Paid</span><span>{{.AmountPaid}}</span></div>
    <div class="row total"><span>Total Amount</span><span>{{.Total}}</span></div>
    <div class="row balance"><span>Balance Due ({{.Status}})</span><span>{{.Balance}}</span></div>
  </div>

  {{if or .Notes .Terms}}
  <div class="footer">
    <div class="col">
      {{if .Notes}}<div class="label">Notes</div><div>{{.Notes}}</div>{{end}}
    </div>
    <div class="col">
      {{if .Terms}}<div class="label">Terms &amp; Conditions</div><div>{{.Terms}}</div>{{end}}
    </div>
  </div>
  {{end}}
</body>
</html>`
