package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/ticketview"
	"github.com/matheus3301/wppdesk/internal/tui/ui"
	"github.com/rivo/tview"
)

// InvoicePanel takes a CPF/CNPJ and shows the duplicate invoice found for it.
type InvoicePanel struct {
	*tview.Flex
	theme    *ui.Theme
	input    *tview.InputField
	result   *tview.TextView
	onChange func(taxID string)
	onSubmit func()

	drawn       bool
	lastInvoice *billing.Invoice
	lastBusy    bool
}

// NewInvoicePanel creates a new invoice panel.
func NewInvoicePanel(theme *ui.Theme) *InvoicePanel {
	input := tview.NewInputField().
		SetLabel(" CPF/CNPJ: ").
		SetFieldWidth(0).
		SetAcceptanceFunc(func(text string, ch rune) bool {
			return strings.ContainsRune("0123456789.-/ ", ch)
		})
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	result := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	result.SetBackgroundColor(theme.BgColor)
	result.SetTextColor(theme.FgColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, false).
		AddItem(result, 0, 1, false)
	flex.SetBorder(true)
	flex.SetBorderColor(theme.BorderColor)
	flex.SetBackgroundColor(theme.BgColor)
	flex.SetTitle(" Invoice (b to focus) ")
	flex.SetTitleColor(theme.TitleColor)

	ip := &InvoicePanel{
		Flex:   flex,
		theme:  theme,
		input:  input,
		result: result,
	}
	input.SetChangedFunc(func(text string) {
		if ip.onChange != nil {
			ip.onChange(text)
		}
	})
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && ip.onSubmit != nil {
			ip.onSubmit()
		}
	})
	return ip
}

// SetHandlers wires the input to the controller.
func (ip *InvoicePanel) SetHandlers(onChange func(taxID string), onSubmit func()) {
	ip.onChange = onChange
	ip.onSubmit = onSubmit
}

// Input returns the tax id field (for focus management).
func (ip *InvoicePanel) Input() *tview.InputField { return ip.input }

// Reset puts taxID in the input without notifying the controller, which
// already holds it.
func (ip *InvoicePanel) Reset(taxID string) {
	fn := ip.onChange
	ip.onChange = nil
	ip.input.SetText(taxID)
	ip.onChange = fn
}

// Update renders the lookup result from l. The input text is owned by the
// user and is never overwritten here.
func (ip *InvoicePanel) Update(l ticketview.Layout) {
	if ip.drawn && l.InvoiceBusy == ip.lastBusy && sameInvoice(l.Invoice, ip.lastInvoice) {
		return
	}
	ip.drawn, ip.lastBusy = true, l.InvoiceBusy
	ip.lastInvoice = nil
	if l.Invoice != nil {
		inv := *l.Invoice
		ip.lastInvoice = &inv
	}
	ip.result.Clear()
	_, _ = fmt.Fprint(ip.result, invoiceText(l, ip.theme))
	ip.result.ScrollToBeginning()
}

func sameInvoice(a, b *billing.Invoice) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func invoiceText(l ticketview.Layout, theme *ui.Theme) string {
	if l.InvoiceBusy {
		return "[::d]Looking up…[-:-:-]"
	}
	if l.Invoice == nil {
		return "[::d]Enter a CPF or CNPJ and press Enter[-:-:-]"
	}
	inv := l.Invoice
	fg := ui.Tag(theme.FgColor)
	ct := ui.Tag(theme.CounterColor)

	var sb strings.Builder
	if inv.Message != "" {
		fmt.Fprintf(&sb, "[%s]%s[-]\n", ui.Tag(theme.FlashSuccessColor), clean(inv.Message))
	}
	if inv.PDFURL != "" {
		fmt.Fprintf(&sb, "[%s::b]PDF:[-:-:-] [%s]%s[-]\n", fg, ct, clean(inv.PDFURL))
	}
	if inv.Barcode != "" {
		fmt.Fprintf(&sb, "[%s::b]Barcode:[-:-:-] [%s]%s[-]\n", fg, ct, clean(inv.Barcode))
	}
	if inv.PDFURL != "" {
		sb.WriteString("\n")
		sb.WriteString(renderQR(inv.PDFURL))
	}
	return sb.String()
}
