package bulkimport

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rutujak-bora/crm/internal/apierror"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	"github.com/rutujak-bora/crm/internal/clock"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("bulkimport",
	fx.Provide(New),
)

// problem is a row-level message shown as is.
type problem string

func (p problem) Error() string { return string(p) }

// Result is returned by every import. Rows that fail do not stop the rest.
type Result struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	Customers customerdomain.Service
	Leads     leaddomain.Service
	Invoices  pidomain.Service
	Orders    podomain.Service
	Bids      biddomain.Service
}

type Importer struct {
	log       *zap.Logger
	clock     clock.Clock
	customers customerdomain.Service
	leads     leaddomain.Service
	invoices  pidomain.Service
	orders    podomain.Service
	bids      biddomain.Service
}

func New(p Params) *Importer {
	return &Importer{
		log:       p.Log.Named("bulkimport"),
		clock:     p.Clock,
		customers: p.Customers,
		leads:     p.Leads,
		invoices:  p.Invoices,
		orders:    p.Orders,
		bids:      p.Bids,
	}
}

func (im *Importer) Import(ctx context.Context, kind Kind, r io.Reader) (Result, error) {
	switch kind {
	case KindCustomers:
		return im.Customers(ctx, r)
	case KindLeads:
		return im.Leads(ctx, r)
	case KindPurchaseOrders:
		return im.PurchaseOrders(ctx, r)
	case KindBids:
		return im.Bids(ctx, r)
	default:
		return Result{}, ErrUnknownKind
	}
}

// Customers creates one customer per row. Rows without a name are skipped.
func (im *Importer) Customers(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := readRows(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Errors: []string{}}
	for _, row := range rows {
		if row.text(0) == "" {
			continue
		}
		_, err := im.customers.Create(ctx, customerdomain.CustomerInput{
			CustomerName:  row.text(0),
			ReferenceName: row.optional(1),
			ContactNumber: row.text(2),
			Email:         row.text(3),
		})
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", describe(err)))
			continue
		}
		res.Created++
	}
	im.done(KindCustomers, res)
	return res, nil
}

type leadGroup struct {
	key   string
	row   int
	input leaddomain.LeadInput
}

// Leads groups rows by proforma invoice number, or by customer name when the
// number is blank, and creates one lead per group.
func (im *Importer) Leads(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := readRows(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Errors: []string{}}
	groups := map[string]*leadGroup{}
	var order []*leadGroup

	for _, row := range rows {
		name := row.text(0)
		if name == "" {
			continue
		}
		customer, err := im.customers.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, customerdomain.ErrNotFound) {
				res.Errors = append(res.Errors, rowError(row.Number, "Customer '%s' not found", name))
			} else {
				res.Errors = append(res.Errors, rowError(row.Number, "%s", describe(err)))
			}
			continue
		}
		quantity, err := row.number(6)
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", err))
			continue
		}
		price, err := row.number(7)
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", err))
			continue
		}

		number := row.text(1)
		key := number
		if key == "" {
			key = name
		}
		group, ok := groups[key]
		if !ok {
			date := row.date(2)
			if date == "" {
				date = im.today()
			}
			group = &leadGroup{key: key, row: row.Number, input: leaddomain.LeadInput{
				CustomerID:            customer.ID.String(),
				ProformaInvoiceNumber: row.optional(1),
				Date:                  date,
				FollowUpDate:          optionalDate(row.date(8)),
				Remark:                row.optional(9),
			}}
			groups[key] = group
			order = append(order, group)
		}
		group.input.Products = append(group.input.Products, lineitem.Item{
			Product:    row.text(3),
			PartNumber: row.optional(4),
			Category:   row.text(5),
			Quantity:   quantity,
			Price:      price,
		})
	}

	for _, group := range order {
		if _, err := im.leads.Create(ctx, group.input); err != nil {
			res.Errors = append(res.Errors, "Lead '"+group.key+"': "+describe(err))
			continue
		}
		res.Created++
	}
	im.done(KindLeads, res)
	return res, nil
}

type orderGroup struct {
	number string
	input  podomain.PurchaseOrderInput
}

// PurchaseOrders groups rows by PO number. The first row of a group carries
// the header fields.
func (im *Importer) PurchaseOrders(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := readRows(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Errors: []string{}}
	groups := map[string]*orderGroup{}
	var order []*orderGroup

	for _, row := range rows {
		number := row.text(0)
		if number == "" {
			continue
		}
		quantity, err := row.number(7)
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", err))
			continue
		}
		price, err := row.number(8)
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", err))
			continue
		}

		group, ok := groups[number]
		if !ok {
			input, err := im.orderHeader(ctx, row)
			if err != nil {
				res.Errors = append(res.Errors, rowError(row.Number, "%s", describe(err)))
				continue
			}
			group = &orderGroup{number: number, input: input}
			groups[number] = group
			order = append(order, group)
		}
		group.input.Products = append(group.input.Products, lineitem.Item{
			Product:  row.text(5),
			Category: row.text(6),
			Quantity: quantity,
			Price:    price,
		})
	}

	for _, group := range order {
		if _, err := im.orders.Create(ctx, group.input); err != nil {
			res.Errors = append(res.Errors, "PO "+group.number+": "+describe(err))
			continue
		}
		res.Created++
	}
	im.done(KindPurchaseOrders, res)
	return res, nil
}

func (im *Importer) orderHeader(ctx context.Context, row row) (podomain.PurchaseOrderInput, error) {
	date := row.date(1)
	if date == "" {
		date = im.today()
	}
	purpose := strings.ToLower(row.text(3))
	if purpose == "" {
		purpose = string(podomain.PurposeStockInSale)
	}
	input := podomain.PurchaseOrderInput{
		PurchaseOrderNumber: row.text(0),
		Date:                date,
		VendorName:          row.text(2),
		Purpose:             purpose,
	}

	if podomain.Purpose(purpose) == podomain.PurposeLinked && row.text(4) != "" {
		invoice, err := im.invoices.GetByNumber(ctx, row.text(4))
		if err != nil {
			return podomain.PurchaseOrderInput{}, err
		}
		id := invoice.ID.String()
		input.ProformaInvoiceID = &id
	}
	return input, nil
}

// Bids creates one bid per row. Rows without a bid number are skipped and an
// unknown status falls back to Shortlisted.
func (im *Importer) Bids(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := readRows(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Errors: []string{}}
	for _, row := range rows {
		if row.text(1) == "" {
			continue
		}
		input, err := bidInput(row)
		if err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", err))
			continue
		}
		if _, err := im.bids.Create(ctx, input); err != nil {
			res.Errors = append(res.Errors, rowError(row.Number, "%s", describe(err)))
			continue
		}
		res.Created++
	}
	im.done(KindBids, res)
	return res, nil
}

func bidInput(row row) (biddomain.BidInput, error) {
	if row.text(4) == "" || row.text(5) == "" || row.text(6) == "" || row.text(7) == "" {
		return biddomain.BidInput{}, problem("Missing required fields")
	}
	emd, err := row.number(6)
	if err != nil {
		return biddomain.BidInput{}, err
	}
	quantity, err := row.number(7)
	if err != nil {
		return biddomain.BidInput{}, err
	}

	input := biddomain.BidInput{
		FirmName:     row.optional(0),
		GemBidNo:     row.text(1),
		BidDetails:   row.optional(2),
		Description:  row.optional(3),
		StartDate:    row.date(4),
		EndDate:      row.date(5),
		EMDAmount:    emd,
		Quantity:     quantity,
		City:         row.optional(8),
		Department:   row.optional(9),
		ItemCategory: row.optional(10),
		Status:       string(biddomain.StatusShortlisted),
	}
	if row.text(11) != "" {
		pct, err := row.number(11)
		if err != nil {
			return biddomain.BidInput{}, err
		}
		input.EPBGPercentage = &pct
	}
	if v := row.text(12); v != "" {
		month, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return biddomain.BidInput{}, problem("invalid EPBG month " + strconv.Quote(v))
		}
		m := int(month)
		input.EPBGMonth = &m
	}
	if status := biddomain.Status(row.text(13)); status.Valid() {
		input.Status = string(status)
	}
	return input, nil
}

func (im *Importer) today() string {
	return im.clock.Now().UTC().Format("2006-01-02")
}

func (im *Importer) done(kind Kind, res Result) {
	im.log.Info("import finished",
		zap.String("kind", string(kind)),
		zap.Int("created", res.Created),
		zap.Int("errors", len(res.Errors)),
	)
}

func describe(err error) string {
	if c := apierror.Classify(err); c.Type != apierror.TypeInternal {
		return c.Detail
	}
	return err.Error()
}

func optionalDate(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
