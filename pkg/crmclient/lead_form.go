package crmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/rutujak-bora/crm/pkg/attachment"
	"github.com/rutujak-bora/crm/pkg/lineitem"
)

// PartialSuccessError reports a lead that was saved while one or more of
// its documents failed to upload. RetryAttachments re-sends only those.
type PartialSuccessError struct {
	Lead   Lead
	Failed map[attachment.Slot]error
}

func (e *PartialSuccessError) Error() string {
	slots := make([]string, 0, len(e.Failed))
	for _, slot := range attachment.Slots {
		if _, ok := e.Failed[slot]; ok {
			slots = append(slots, string(slot))
		}
	}
	return fmt.Sprintf("lead %s saved but upload failed for %s", e.Lead.ID, strings.Join(slots, ", "))
}

func (e *PartialSuccessError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, slot := range attachment.Slots {
		if err, ok := e.Failed[slot]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}

type slotState struct {
	pending *File
	url     *string
}

// LeadForm is the create and edit form for a lead, including its two
// document slots. A form loaded from a converted lead is read-only.
type LeadForm struct {
	api *Client

	mu           sync.Mutex
	submitting   bool
	converted    bool
	leadID       string
	customerID   string
	customerName string

	Editor                *lineitem.Editor
	Date                  string
	FollowUpDate          string
	Remark                string
	ProformaInvoiceNumber string

	slots map[attachment.Slot]*slotState
}

func (c *Client) NewLeadForm() *LeadForm {
	return &LeadForm{
		api:    c,
		Editor: lineitem.NewEditor(nil),
		slots:  newSlots(),
	}
}

// EditLeadForm loads lead id into a form. Submit, Attach and Detach on a
// converted lead are rejected without a request.
func (c *Client) EditLeadForm(ctx context.Context, id string) (*LeadForm, error) {
	lead, err := c.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	f := c.NewLeadForm()
	f.load(lead)
	return f, nil
}

func newSlots() map[attachment.Slot]*slotState {
	slots := make(map[attachment.Slot]*slotState, len(attachment.Slots))
	for _, slot := range attachment.Slots {
		slots[slot] = &slotState{}
	}
	return slots
}

func (f *LeadForm) load(lead Lead) {
	f.converted = lead.IsConverted
	f.leadID = lead.ID
	f.customerID = lead.CustomerID
	f.customerName = lead.CustomerName
	f.Editor = lineitem.NewEditor(lead.Products)
	f.Date = lead.Date
	f.FollowUpDate = deref(lead.FollowUpDate)
	f.Remark = deref(lead.Remark)
	f.ProformaInvoiceNumber = deref(lead.ProformaInvoiceNumber)
	f.slots[attachment.SlotTenderDocument].url = lead.TenderDocument
	f.slots[attachment.SlotWorkingSheet].url = lead.WorkingSheet
}

// LeadID is empty until the lead has been created.
func (f *LeadForm) LeadID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leadID
}

// ReadOnly reports whether the lead was already converted when loaded.
func (f *LeadForm) ReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.converted
}

func (f *LeadForm) SelectCustomer(c Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customerID = c.ID
	f.customerName = c.CustomerName
}

// Pending returns the file waiting to be uploaded into slot, if any.
func (f *LeadForm) Pending(slot attachment.Slot) (File, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.slots[slot]
	if !ok || st.pending == nil {
		return File{}, false
	}
	return *st.pending, true
}

// DocumentURL returns the stored document in slot, if any.
func (f *LeadForm) DocumentURL(slot attachment.Slot) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.slots[slot]
	if !ok || st.url == nil {
		return "", false
	}
	return *st.url, true
}

// Attach puts file into slot. A rejected file leaves the slot as it was.
// New leads hold the file until Submit; saved leads upload it now.
func (f *LeadForm) Attach(ctx context.Context, slot attachment.Slot, file File) Result[UploadResult] {
	st, ok := f.slots[slot]
	if !ok {
		return rejected[UploadResult](attachment.ErrUnknownSlot)
	}
	if err := attachment.Validate(file.Name, file.Size()); err != nil {
		return rejected[UploadResult](err)
	}

	f.mu.Lock()
	if f.converted {
		f.mu.Unlock()
		return rejected[UploadResult](ErrLeadConverted)
	}
	id := f.leadID
	if id == "" {
		pending := file
		st.pending = &pending
		f.mu.Unlock()
		return succeeded(UploadResult{FileName: file.Name})
	}
	f.mu.Unlock()

	res, err := f.api.uploadLeadDocument(ctx, id, slot, file)
	if err != nil {
		return failed[UploadResult](err, RollbackKeepLocal)
	}
	f.mu.Lock()
	st.url = &res.DocumentURL
	f.mu.Unlock()
	return succeeded(res)
}

// Detach clears slot. A pending file is dropped locally; a stored document
// is deleted on the server first.
func (f *LeadForm) Detach(ctx context.Context, slot attachment.Slot) Result[struct{}] {
	st, ok := f.slots[slot]
	if !ok {
		return rejected[struct{}](attachment.ErrUnknownSlot)
	}

	f.mu.Lock()
	if f.converted {
		f.mu.Unlock()
		return rejected[struct{}](ErrLeadConverted)
	}
	if st.pending != nil {
		st.pending = nil
		f.mu.Unlock()
		return succeeded(struct{}{})
	}
	id := f.leadID
	if st.url == nil || id == "" {
		f.mu.Unlock()
		return succeeded(struct{}{})
	}
	f.mu.Unlock()

	path := "/leads/" + url.PathEscape(id) + "/" + slot.Path()
	if err := f.api.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return failed[struct{}](err, RollbackKeepLocal)
	}
	f.mu.Lock()
	st.url = nil
	f.mu.Unlock()
	return succeeded(struct{}{})
}

// Validate runs the checks Submit applies before sending anything.
func (f *LeadForm) Validate() error {
	f.mu.Lock()
	customerID := f.customerID
	f.mu.Unlock()
	if strings.TrimSpace(customerID) == "" {
		return ErrCustomerRequired
	}
	if err := f.Editor.Validate(); err != nil {
		if errors.Is(err, lineitem.ErrNoValidProduct) {
			return ErrProductsRequired
		}
		return err
	}
	return nil
}

// begin claims the form for one request until done is called. It fails
// while another Submit or RetryAttachments is running.
func (f *LeadForm) begin() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.converted {
		return "", ErrLeadConverted
	}
	if f.submitting {
		return "", ErrSubmitInProgress
	}
	f.submitting = true
	return f.leadID, nil
}

func (f *LeadForm) done() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

// Submit saves the lead and then uploads any pending documents. If the
// lead is saved but an upload fails the result is StatePartial with a
// *PartialSuccessError; the form keeps the failed files for
// RetryAttachments. A Submit made while one is running is rejected.
func (f *LeadForm) Submit(ctx context.Context) Result[Lead] {
	id, err := f.begin()
	if err != nil {
		return rejected[Lead](err)
	}
	defer f.done()

	if err := f.Validate(); err != nil {
		return rejected[Lead](err)
	}

	f.mu.Lock()
	customerID, customerName := f.customerID, f.customerName
	f.mu.Unlock()
	in := leadInput{
		CustomerID:            customerID,
		CustomerName:          customerName,
		ProformaInvoiceNumber: optional(f.ProformaInvoiceNumber),
		Date:                  f.Date,
		Products:              f.Editor.Items(),
		FollowUpDate:          optional(f.FollowUpDate),
		Remark:                optional(f.Remark),
	}

	var lead Lead
	if id == "" {
		err = f.api.doJSON(ctx, http.MethodPost, "/leads", in, &lead)
	} else {
		err = f.api.doJSON(ctx, http.MethodPut, "/leads/"+url.PathEscape(id), in, &lead)
	}
	if err != nil {
		return failed[Lead](err, RollbackKeepLocal)
	}
	f.mu.Lock()
	f.leadID = lead.ID
	f.mu.Unlock()

	return f.uploadPending(ctx, lead)
}

// RetryAttachments re-runs only the upload step of a partially saved lead.
func (f *LeadForm) RetryAttachments(ctx context.Context) Result[Lead] {
	id, err := f.begin()
	if err != nil {
		return rejected[Lead](err)
	}
	defer f.done()

	if id == "" {
		return rejected[Lead](ErrNotSaved)
	}
	lead, err := f.api.GetLead(ctx, id)
	if err != nil {
		return failed[Lead](err, RollbackKeepLocal)
	}
	return f.uploadPending(ctx, lead)
}

func (f *LeadForm) uploadPending(ctx context.Context, lead Lead) Result[Lead] {
	var failures map[attachment.Slot]error
	for _, slot := range attachment.Slots {
		st := f.slots[slot]
		f.mu.Lock()
		pending := st.pending
		f.mu.Unlock()
		if pending == nil {
			continue
		}
		res, err := f.api.uploadLeadDocument(ctx, lead.ID, slot, *pending)
		if err != nil {
			if failures == nil {
				failures = map[attachment.Slot]error{}
			}
			failures[slot] = err
			continue
		}
		f.mu.Lock()
		if st.pending == pending {
			st.pending = nil
		}
		st.url = &res.DocumentURL
		f.mu.Unlock()
		setDocument(&lead, slot, res.DocumentURL)
	}

	if len(failures) > 0 {
		return Result[Lead]{
			State:    StatePartial,
			Value:    lead,
			Err:      &PartialSuccessError{Lead: lead, Failed: failures},
			Rollback: RollbackKeepLocal,
		}
	}
	return succeeded(lead)
}

func (c *Client) uploadLeadDocument(ctx context.Context, leadID string, slot attachment.Slot, file File) (UploadResult, error) {
	var out UploadResult
	err := c.upload(ctx, "/leads/"+url.PathEscape(leadID)+"/upload-"+slot.Path(), file, &out)
	return out, err
}

func setDocument(lead *Lead, slot attachment.Slot, link string) {
	switch slot {
	case attachment.SlotTenderDocument:
		lead.TenderDocument = &link
	case attachment.SlotWorkingSheet:
		lead.WorkingSheet = &link
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
