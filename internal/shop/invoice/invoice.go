// Package invoice renders an order into a line-itemized document. Layout is
// expressed as ordered text emissions with a font-size hint, so the PDF
// backend stays swappable and tests can capture plain lines.
package invoice

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirbootoo/minishop-test/internal/shop"
)

const (
	titleFontSize = 26
	bodyFontSize  = 14
	separator     = "------------------------"
)

type DocumentWriter interface {
	Text(fontSize float64, line string)
}

type Renderer struct{}

// Render emits the invoice for order: title, separator, one line per item in
// stored order, separator, total. The total is rounded once, on the sum.
func (Renderer) Render(order shop.Order, doc DocumentWriter) {
	doc.Text(titleFontSize, "Invoice")
	doc.Text(bodyFontSize, separator)

	var total float64
	for _, item := range order.Items {
		total += item.Price * float64(item.Quantity)
		doc.Text(bodyFontSize, fmt.Sprintf("%s - $%s x %d", item.Title, formatPrice(item.Price), item.Quantity))
	}

	doc.Text(bodyFontSize, separator)
	doc.Text(bodyFontSize, fmt.Sprintf("Total: $%d", int64(math.Round(total))))
}

func FileName(orderID int64) string {
	return fmt.Sprintf("invoice-%d.pdf", orderID)
}

// formatPrice prints whole prices without a decimal point: 5 not 5.00.
func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
