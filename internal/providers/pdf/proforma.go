package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ProformaInvoiceData struct {
	Number       string
	Date         string
	CustomerName string
	Items        []ProformaInvoiceItem
	Total        float64
}

type ProformaInvoiceItem struct {
	Product    string
	PartNumber string
	Category   string
	Quantity   float64
	Price      float64
	Amount     float64
}

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) ProformaInvoice(ctx context.Context, data ProformaInvoiceData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Proforma Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Number: "+data.Number, props.Text{Top: 0}),
			text.New("Date: "+data.Date, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Customer", props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(data.CustomerName, props.Text{Top: 5, Align: align.Right}),
		),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 9}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	m.AddRow(10,
		text.NewCol(4, "Product", header),
		text.NewCol(2, "Category", header),
		text.NewCol(2, "Qty", headerRight),
		text.NewCol(2, "Price", headerRight),
		text.NewCol(2, "Amount", headerRight),
	)
	m.AddRow(2, line.NewCol(12))

	cell := props.Text{Size: 9}
	cellRight := props.Text{Size: 9, Align: align.Right}
	for _, item := range data.Items {
		product := item.Product
		if item.PartNumber != "" {
			product = fmt.Sprintf("%s (%s)", item.Product, item.PartNumber)
		}
		m.AddRow(8,
			text.NewCol(4, product, cell),
			text.NewCol(2, item.Category, cell),
			text.NewCol(2, formatNumber(item.Quantity), cellRight),
			text.NewCol(2, formatMoney(item.Price), cellRight),
			text.NewCol(2, formatMoney(item.Amount), cellRight),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, formatMoney(data.Total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate proforma invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
