package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/clock"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	customerrepo "github.com/rutujak-bora/crm/internal/customer/repository"
	customerservice "github.com/rutujak-bora/crm/internal/customer/service"
	"github.com/rutujak-bora/crm/internal/lead/domain"
	"github.com/rutujak-bora/crm/internal/lead/repository"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	pirepo "github.com/rutujak-bora/crm/internal/proformainvoice/repository"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/rutujak-bora/crm/pkg/lineitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	customer customerdomain.Customer
	invoices pidomain.Repository
	dir      string
	clock    *clock.FakeClock
	svcImpl  *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	db := dbtest.Open(t, &customerdomain.Customer{}, &domain.Lead{}, &pidomain.ProformaInvoice{})
	log := zap.NewNop()

	customers := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: customerrepo.Provide(),
	})
	customer, err := customers.Create(context.Background(), customerdomain.CustomerInput{
		CustomerName:  "Acme Traders",
		ContactNumber: "9876543210",
		Email:         "buyer@acme.test",
	})
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := storage.New(dir, storage.CRMURLPrefix)
	require.NoError(t, err)

	invoices := pirepo.Provide()
	svc := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		InvoiceRepo: invoices,
		Customers:   customers,
		Stores:      &storage.Stores{CRM: store, GemBid: store},
	})
	return fixture{svc: svc, customer: customer, invoices: invoices, dir: dir, clock: clk, svcImpl: svc.(*Service)}
}

func (f fixture) input(products ...lineitem.Item) domain.LeadInput {
	return domain.LeadInput{
		CustomerID: f.customer.ID.String(),
		Date:       "2024-03-01",
		Products:   products,
	}
}

func item(product, category string, quantity, price float64) lineitem.Item {
	return lineitem.Item{Product: product, Category: category, Quantity: quantity, Price: price}
}

func strPtr(s string) *string { return &s }

func TestCreateComputesAmountsAndDenormalizesCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(
		item("Laptop", "IT Hardware", 2, 45000.5),
		item("Mouse", "Accessories", 3, 0.335),
	))
	require.NoError(t, err)

	assert.Equal(t, "Acme Traders", lead.CustomerName)
	assert.Equal(t, 90001.0, lead.Products[0].Amount)
	assert.Equal(t, 1.01, lead.Products[1].Amount)
	assert.Equal(t, 90002.01, lead.TotalAmount)
	assert.False(t, lead.IsConverted)
	assert.Nil(t, lead.TenderDocument)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missingCustomer := f.input(item("Laptop", "IT", 1, 1))
	missingCustomer.CustomerID = "12345"
	_, err := f.svc.Create(ctx, missingCustomer)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	badDate := f.input(item("Laptop", "IT", 1, 1))
	badDate.Date = "01/03/2024"
	_, err = f.svc.Create(ctx, badDate)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	badFollowUp := f.input(item("Laptop", "IT", 1, 1))
	badFollowUp.FollowUpDate = strPtr("tomorrow")
	_, err = f.svc.Create(ctx, badFollowUp)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = f.svc.Create(ctx, f.input(item("", "IT", 1, 1), item("Laptop", "IT", 0, 1)))
	assert.ErrorIs(t, err, lineitem.ErrNoValidProduct)
}

func TestListFiltersByCustomerAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.input(item("Laptop", "IT Hardware", 1, 10)))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Create(ctx, f.input(item("Chair", "Furniture", 1, 10)))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListLeadRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Chair", all[0].Products[0].Product)

	hardware, err := f.svc.List(ctx, domain.ListLeadRequest{Category: "hardware"})
	require.NoError(t, err)
	require.Len(t, hardware, 1)
	assert.Equal(t, "Laptop", hardware[0].Products[0].Product)

	none, err := f.svc.List(ctx, domain.ListLeadRequest{CustomerName: "globex"})
	require.NoError(t, err)
	assert.Empty(t, none)

	acme, err := f.svc.List(ctx, domain.ListLeadRequest{CustomerName: "acme"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)
}

func TestUpdateKeepsDocumentsAndRejectsConverted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 100)))
	require.NoError(t, err)

	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotTenderDocument,
		FileName: "tender.pdf", Size: 4, Content: strings.NewReader("%PDF"),
	})
	require.NoError(t, err)

	in := f.input(item("Laptop", "IT", 3, 100))
	in.Remark = strPtr("  call back  ")
	updated, err := f.svc.Update(ctx, lead.ID.String(), in)
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.TotalAmount)
	require.NotNil(t, updated.Remark)
	assert.Equal(t, "call back", *updated.Remark)

	stored, err := f.svc.GetByID(ctx, lead.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.TenderDocument)
	assert.Equal(t, 300.0, stored.TotalAmount)

	_, err = f.svc.Convert(ctx, lead.ID.String(), "PI-100")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, lead.ID.String(), in)
	assert.ErrorIs(t, err, domain.ErrConverted)
}

// convertingRepo converts the lead between the service's read and its write.
type convertingRepo struct {
	domain.Repository
}

func (r convertingRepo) UpdateEditable(ctx context.Context, db *gorm.DB, lead *domain.Lead) (bool, error) {
	if _, err := r.MarkConverted(ctx, db, lead.ID, "PI-RACE"); err != nil {
		return false, err
	}
	return r.Repository.UpdateEditable(ctx, db, lead)
}

func TestUpdateLosesToConcurrentConversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 100)))
	require.NoError(t, err)

	f.svcImpl.repo = convertingRepo{Repository: f.svcImpl.repo}
	_, err = f.svc.Update(ctx, lead.ID.String(), f.input(item("Desk", "Furniture", 5, 20)))
	assert.ErrorIs(t, err, domain.ErrConverted)

	stored, err := f.svc.GetByID(ctx, lead.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.IsConverted)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, "Laptop", stored.Products[0].Product)
	assert.Equal(t, 100.0, stored.TotalAmount)
}

func TestUpdateWithUnchangedValuesSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(item("Laptop", "IT", 1, 100))
	lead, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, lead.ID.String(), in)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, lead.ID.String(), in)
	require.NoError(t, err)
}

func TestUploadReplacesPreviousFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 100)))
	require.NoError(t, err)

	first, err := f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotWorkingSheet,
		FileName: "Sheet.XLSX", Size: 3, Content: strings.NewReader("one"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Working sheet uploaded successfully", first.Message)
	assert.Equal(t, "Sheet.XLSX", first.FileName)

	firstName := storage.NameFromURL(first.DocumentURL)
	assert.True(t, strings.HasPrefix(firstName, "ws_"+lead.ID.String()+"_"))
	assert.True(t, strings.HasSuffix(firstName, ".xlsx"))
	assert.True(t, strings.HasPrefix(first.DocumentURL, "/api/uploads/"))

	second, err := f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotWorkingSheet,
		FileName: "sheet2.xlsx", Size: 3, Content: strings.NewReader("two"),
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(f.dir, firstName))
	assert.True(t, os.IsNotExist(err))
	body, err := os.ReadFile(filepath.Join(f.dir, storage.NameFromURL(second.DocumentURL)))
	require.NoError(t, err)
	assert.Equal(t, "two", string(body))

	stored, err := f.svc.GetByID(ctx, lead.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.WorkingSheet)
	assert.Equal(t, second.DocumentURL, *stored.WorkingSheet)
	assert.Nil(t, stored.TenderDocument)
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 100)))
	require.NoError(t, err)

	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotTenderDocument,
		FileName: "notes.txt", Size: 3, Content: strings.NewReader("abc"),
	})
	assert.ErrorIs(t, err, attachment.ErrExtensionNotAllowed)

	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotTenderDocument,
		FileName: "big.pdf", Size: attachment.MaxSize + 1, Content: strings.NewReader("abc"),
	})
	assert.ErrorIs(t, err, attachment.ErrTooLarge)

	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: "999", Slot: attachment.SlotTenderDocument,
		FileName: "a.pdf", Size: 3, Content: strings.NewReader("abc"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteDocumentClearsSlotAndFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 100)))
	require.NoError(t, err)
	resp, err := f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		LeadID: lead.ID.String(), Slot: attachment.SlotTenderDocument,
		FileName: "t.pdf", Size: 3, Content: strings.NewReader("abc"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Document uploaded successfully", resp.Message)

	require.NoError(t, f.svc.DeleteDocument(ctx, lead.ID.String(), attachment.SlotTenderDocument))

	stored, err := f.svc.GetByID(ctx, lead.ID.String())
	require.NoError(t, err)
	assert.Nil(t, stored.TenderDocument)
	_, err = os.Stat(filepath.Join(f.dir, storage.NameFromURL(resp.DocumentURL)))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertCreatesInvoiceSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(item("Laptop", "IT", 2, 500))
	in.ProformaInvoiceNumber = strPtr("PI-7")
	lead, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	invoice, err := f.svc.Convert(ctx, lead.ID.String(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "PI-7", invoice.ProformaInvoiceNumber)
	assert.Equal(t, lead.ID, invoice.LeadID)
	assert.Equal(t, 1000.0, invoice.TotalAmount)
	assert.Equal(t, "Acme Traders", invoice.CustomerName)

	stored, err := f.invoices.FindByID(ctx, f.svcImpl.db, invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "PI-7", stored.ProformaInvoiceNumber)
	require.Len(t, stored.Products, 1)

	converted, err := f.svc.GetByID(ctx, lead.ID.String())
	require.NoError(t, err)
	assert.True(t, converted.IsConverted)

	_, err = f.svc.Convert(ctx, lead.ID.String(), "PI-8")
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)

	active, err := f.svc.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), active)
}

func TestConvertRequiresNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 1)))
	require.NoError(t, err)

	_, err = f.svc.Convert(ctx, lead.ID.String(), "")
	assert.ErrorIs(t, err, domain.ErrProformaNumberMissing)

	_, err = f.svc.Convert(ctx, "42", "PI-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Convert(ctx, "not-an-id", "PI-1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestDeleteLeavesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lead, err := f.svc.Create(ctx, f.input(item("Laptop", "IT", 1, 1)))
	require.NoError(t, err)
	invoice, err := f.svc.Convert(ctx, lead.ID.String(), "PI-9")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, lead.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(ctx, lead.ID.String()), domain.ErrNotFound)

	stored, err := f.invoices.FindByID(ctx, f.svcImpl.db, invoice.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}
