package procurement

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PODocument is the printable view of a purchase order, with amounts rounded
// and formatted at the presentation edge only.
type PODocument struct {
	Number       string           `json:"number"`
	Status       POStatus         `json:"status"`
	Supplier     DocumentSupplier `json:"supplier"`
	Lines        []DocumentLine   `json:"lines"`
	Subtotal     string           `json:"subtotal"`
	Tax          string           `json:"tax"`
	Total        string           `json:"total"`
	OriginOrder  string           `json:"origin_order"`
	DeliveryAddr string           `json:"delivery_address,omitempty"`
	DeliveryDate time.Time        `json:"delivery_date"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// DocumentSupplier carries supplier contact details for the document header.
type DocumentSupplier struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	PaymentTerms  int    `json:"payment_terms_days,omitempty"`
}

// DocumentLine is one printable purchase order line.
type DocumentLine struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Description string `json:"description,omitempty"`
	Qty         string `json:"qty"`
	UnitCost    string `json:"unit_cost"`
	TotalCost   string `json:"total_cost"`
}

var docPrinter = message.NewPrinter(language.English)

// formatAmount renders a decimal as a grouped two-decimal string.
func formatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return docPrinter.Sprintf("%.2f", f)
}

// BuildDocument renders a purchase order into its printable form.
func BuildDocument(po GeneratedPurchaseOrder) PODocument {
	lines := make([]DocumentLine, 0, len(po.Items))
	for _, item := range po.Items {
		lines = append(lines, DocumentLine{
			ProductCode: item.Product.Code,
			ProductName: item.Product.Name,
			Description: item.Product.Description,
			Qty:         item.Qty.String(),
			UnitCost:    formatAmount(item.UnitCost),
			TotalCost:   formatAmount(item.TotalCost),
		})
	}
	return PODocument{
		Number: po.Number,
		Status: po.Status,
		Supplier: DocumentSupplier{
			Code:          po.Supplier.Code,
			Name:          po.Supplier.Name,
			ContactPerson: po.Supplier.ContactPerson,
			Email:         po.Supplier.Email,
			Phone:         po.Supplier.Phone,
			Address:       po.Supplier.Address,
			PaymentTerms:  po.Supplier.PaymentTermsDays,
		},
		Lines:        lines,
		Subtotal:     formatAmount(po.Totals.Subtotal),
		Tax:          formatAmount(po.Totals.Tax),
		Total:        formatAmount(po.Totals.Total),
		OriginOrder:  po.OriginOrderRef,
		DeliveryAddr: po.DeliveryAddr,
		DeliveryDate: po.DeliveryDate,
		GeneratedAt:  po.GeneratedAt,
	}
}
