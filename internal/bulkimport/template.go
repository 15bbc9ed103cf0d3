// Package bulkimport builds the Excel templates users fill in and loads the
// filled workbooks through the domain services.
package bulkimport

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

type Kind string

const (
	KindCustomers      Kind = "customers"
	KindLeads          Kind = "leads"
	KindPurchaseOrders Kind = "purchase_orders"
	KindBids           Kind = "bids"
)

// ContentType is the media type of generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrUnknownKind = errors.New("unknown_template")

type layout struct {
	sheet    string
	fileName string
	headers  []string
	examples [][]any
}

var layouts = map[Kind]layout{
	KindCustomers: {
		sheet:    "Customers",
		fileName: "customer_template.xlsx",
		headers:  []string{"Customer Name*", "Reference Name", "Contact Number*", "Email*"},
		examples: [][]any{
			{"John Doe", "REF001", "9876543210", "john@example.com"},
			{"Jane Smith", "REF002", "9876543211", "jane@example.com"},
		},
	},
	KindLeads: {
		sheet:    "Leads",
		fileName: "lead_template.xlsx",
		headers: []string{
			"Customer Name*", "Proforma Invoice No", "Date*", "Product*", "Part Number",
			"Category*", "Quantity*", "Price*", "Follow-up Date", "Remark",
		},
		examples: [][]any{
			{"John Doe", "PI-001", "2024-01-15", "Widget A", "PN-001", "Electronics", 10, 100, "2024-01-20", "Initial inquiry"},
			{"John Doe", "PI-001", "2024-01-15", "Widget B", "PN-002", "Electronics", 5, 200, "2024-01-20", "Initial inquiry"},
			{"Jane Smith", "", "2024-01-16", "Gadget X", "PN-003", "Hardware", 3, 150, "2024-01-25", "Follow up needed"},
		},
	},
	KindPurchaseOrders: {
		sheet:    "Purchase Orders",
		fileName: "purchase_order_template.xlsx",
		headers: []string{
			"PO Number*", "Date*", "Vendor Name*", "Purpose (linked/stock_in_sale)*", "Proforma Invoice No",
			"Product*", "Category*", "Quantity*", "Price*",
		},
		examples: [][]any{
			{"PO-001", "2024-01-15", "Vendor ABC", "linked", "PI-001", "Widget A", "Electronics", 5, 80},
			{"PO-001", "2024-01-15", "Vendor ABC", "linked", "PI-001", "Widget B", "Electronics", 3, 100},
			{"PO-002", "2024-01-16", "Vendor XYZ", "stock_in_sale", "", "Widget C", "Hardware", 10, 50},
		},
	},
	KindBids: {
		sheet:    "GEM Bids",
		fileName: "gem_bid_template.xlsx",
		headers: []string{
			"Firm Name", "Gem Bid No*", "Bid Details", "Description", "Start Date* (YYYY-MM-DD)", "End Date* (YYYY-MM-DD)",
			"EMD Amount*", "Quantity*", "City", "Department", "Item Category",
			"EPBG Percentage", "EPBG Month", "Status*",
		},
		examples: [][]any{
			{
				"ABC Corp", "GEM/2024/B/001", "Detailed specs for office equipment", "Supply of Office Equipment", "2024-01-15", "2024-02-15",
				50000, 100, "Delhi", "Ministry of Finance", "Electronics",
				5, 12, "Shortlisted",
			},
		},
	},
}

// Columns returns the number of columns in a template.
func Columns(kind Kind) int {
	return len(layouts[kind].headers)
}

// Template renders the workbook for kind and returns its download name.
func Template(kind Kind) ([]byte, string, error) {
	l, ok := layouts[kind]
	if !ok {
		return nil, "", ErrUnknownKind
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), l.sheet); err != nil {
		return nil, "", err
	}
	if err := f.SetSheetRow(l.sheet, "A1", &l.headers); err != nil {
		return nil, "", err
	}
	for i, row := range l.examples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(l.sheet, cell, &row); err != nil {
			return nil, "", err
		}
	}

	last, err := excelize.ColumnNumberToName(len(l.headers))
	if err != nil {
		return nil, "", err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, "", err
	}
	if err := f.SetCellStyle(l.sheet, "A1", last+"1", bold); err != nil {
		return nil, "", err
	}
	if err := f.SetColWidth(l.sheet, "A", last, 20); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("write %s: %w", l.fileName, err)
	}
	return buf.Bytes(), l.fileName, nil
}
