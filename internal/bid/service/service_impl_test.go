package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/bid/domain"
	"github.com/rutujak-bora/crm/internal/bid/repository"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/storage"
	"github.com/rutujak-bora/crm/pkg/attachment"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	repo  domain.Repository
	db    *gorm.DB
	dir   string
	clock *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	db := dbtest.Open(t, &domain.Bid{})

	dir := t.TempDir()
	store, err := storage.New(dir, storage.GemBidURLPrefix)
	require.NoError(t, err)

	repo := repository.Provide()
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Repo:   repo,
		Stores: &storage.Stores{CRM: store, GemBid: store},
	})
	return fixture{svc: svc, repo: repo, db: db, dir: dir, clock: clk}
}

func input(number, end string) domain.BidInput {
	return domain.BidInput{
		GemBidNo:  number,
		StartDate: "2024-05-01",
		EndDate:   end,
		EMDAmount: 25000,
		Quantity:  10,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateDefaultsStatusAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := input("GEM/2024/B/1001", "2024-05-20T17:00")
	in.FirmName = strPtr("  Bora Enterprises ")
	bid, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusShortlisted, bid.Status)
	require.Len(t, bid.StatusHistory, 1)
	assert.Equal(t, domain.StatusShortlisted, bid.StatusHistory[0].Status)
	assert.Equal(t, f.clock.Now(), bid.StatusHistory[0].Timestamp)
	require.NotNil(t, bid.FirmName)
	assert.Equal(t, "Bora Enterprises", *bid.FirmName)
	assert.Empty(t, bid.Documents)

	stored, err := f.svc.GetByID(ctx, bid.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20T17:00", stored.EndDate)
	require.Len(t, stored.StatusHistory, 1)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, input(" ", "2024-05-20"))
	assert.ErrorIs(t, err, domain.ErrInvalidBidNo)

	_, err = f.svc.Create(ctx, input("GEM-1", "20/05/2024"))
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	bad := input("GEM-1", "2024-05-20")
	bad.Status = "Won"
	_, err = f.svc.Create(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateAppendsHistoryOnlyOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Create(ctx, input("GEM-2", "2024-05-20"))
	require.NoError(t, err)

	in := input("GEM-2", "2024-05-21")
	updated, err := f.svc.Update(ctx, bid.ID.String(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShortlisted, updated.Status)
	assert.Len(t, updated.StatusHistory, 1)

	f.clock.Advance(time.Hour)
	in.Status = string(domain.StatusParticipated)
	updated, err = f.svc.Update(ctx, bid.ID.String(), in)
	require.NoError(t, err)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, domain.StatusParticipated, updated.StatusHistory[1].Status)

	updated, err = f.svc.Update(ctx, bid.ID.String(), in)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 2)

	stored, err := f.svc.GetByID(ctx, bid.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-21", stored.EndDate)
	assert.Len(t, stored.StatusHistory, 2)
}

func TestPatchStatusAlwaysAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Create(ctx, input("GEM-3", "2024-05-20"))
	require.NoError(t, err)

	_, err = f.svc.PatchStatus(ctx, bid.ID.String(), "Shortlisted")
	require.NoError(t, err)
	patched, err := f.svc.PatchStatus(ctx, bid.ID.String(), "Bid Awarded")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBidAwarded, patched.Status)

	stored, err := f.svc.GetByID(ctx, bid.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBidAwarded, stored.Status)
	assert.Len(t, stored.StatusHistory, 3)

	_, err = f.svc.PatchStatus(ctx, bid.ID.String(), "Lost")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = f.svc.PatchStatus(ctx, "77", "RA")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListSplitsNewAndCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open, err := f.svc.Create(ctx, input("GEM-OPEN", "2024-05-20"))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	done := input("GEM-DONE", "2024-05-20")
	done.Status = string(domain.StatusOrderComplete)
	_, err = f.svc.Create(ctx, done)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "GEM-DONE", all[0].GemBidNo)

	fresh, err := f.svc.ListNew(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, open.ID, fresh[0].ID)

	completed, err := f.svc.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "GEM-DONE", completed[0].GemBidNo)

	byStatus, err := f.svc.List(ctx, "Order Complete")
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	_, err = f.svc.List(ctx, "Closed")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDocumentsUploadAndDeleteByIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Create(ctx, input("GEM-4", "2024-05-20"))
	require.NoError(t, err)

	first, err := f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		BidID: bid.ID.String(), FileName: "Tender.PDF", Size: 3, Content: strings.NewReader("one"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Document uploaded", first.Message)
	assert.True(t, strings.HasPrefix(first.DocumentURL, "/api/gem-bid/uploads/gem_"+bid.ID.String()+"_"))
	assert.True(t, strings.HasSuffix(first.DocumentURL, ".pdf"))

	second, err := f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		BidID: bid.ID.String(), FileName: "boq.xlsx", Size: 3, Content: strings.NewReader("two"),
	})
	require.NoError(t, err)

	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		BidID: bid.ID.String(), FileName: "notes.txt", Size: 3, Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, attachment.ErrExtensionNotAllowed)

	stored, err := f.svc.GetByID(ctx, bid.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Documents, 2)
	assert.Equal(t, "Tender.PDF", stored.Documents[0].FileName)

	assert.ErrorIs(t, f.svc.DeleteDocument(ctx, bid.ID.String(), 2), domain.ErrDocumentNotFound)
	assert.ErrorIs(t, f.svc.DeleteDocument(ctx, bid.ID.String(), -1), domain.ErrDocumentNotFound)
	require.NoError(t, f.svc.DeleteDocument(ctx, bid.ID.String(), 0))

	stored, err = f.svc.GetByID(ctx, bid.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.Documents, 1)
	assert.Equal(t, second.DocumentURL, stored.Documents[0].URL)
	_, err = os.Stat(filepath.Join(f.dir, storage.NameFromURL(first.DocumentURL)))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteRemovesFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Create(ctx, input("GEM-5", "2024-05-20"))
	require.NoError(t, err)
	_, err = f.svc.UploadDocument(ctx, domain.UploadDocumentRequest{
		BidID: bid.ID.String(), FileName: "a.pdf", Size: 1, Content: strings.NewReader("a"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, bid.ID.String()))
	assert.ErrorIs(t, f.svc.Delete(ctx, bid.ID.String()), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "abc"), domain.ErrInvalidID)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReminderSelectionAndMarking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due, err := f.svc.Create(ctx, input("GEM-DUE", "2024-05-11T15:30"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, input("GEM-LATER", "2024-05-12"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, input("GEM-TODAY", "2024-05-10"))
	require.NoError(t, err)

	bids, err := f.repo.ListDueForReminder(ctx, f.db, "2024-05-11", "2024-05-12")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, due.ID, bids[0].ID)

	marked, err := f.repo.MarkReminderSent(ctx, f.db, due.ID, f.clock.Now())
	require.NoError(t, err)
	assert.True(t, marked)
	marked, err = f.repo.MarkReminderSent(ctx, f.db, due.ID, f.clock.Now())
	require.NoError(t, err)
	assert.False(t, marked)

	bids, err = f.repo.ListDueForReminder(ctx, f.db, "2024-05-11", "2024-05-12")
	require.NoError(t, err)
	assert.Empty(t, bids)

	// Editing a reminded bid keeps the flag.
	_, err = f.svc.Update(ctx, due.ID.String(), input("GEM-DUE", "2024-05-11"))
	require.NoError(t, err)
	stored, err := f.svc.GetByID(ctx, due.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.ReminderSent)
}
