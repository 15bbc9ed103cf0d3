package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	bidrepo "github.com/rutujak-bora/crm/internal/bid/repository"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/config"
	"github.com/rutujak-bora/crm/internal/providers/email"
	"github.com/rutujak-bora/crm/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) Send(ctx context.Context, msg email.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockEmail) SendTemplate(ctx context.Context, to []string, subject, templateName string, data any) error {
	return m.Called(to, subject, templateName, data).Error(0)
}

func (m *mockEmail) Enabled() bool { return true }

type fixture struct {
	job   *Job
	db    *gorm.DB
	repo  biddomain.Repository
	mail  *mockEmail
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newFixture(t *testing.T, settings config.ReminderSettings) fixture {
	t.Helper()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC))
	db := dbtest.Open(t, &biddomain.Bid{})
	repo := bidrepo.Provide()
	mail := &mockEmail{}

	job := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		Bids:     repo,
		Email:    mail,
		Settings: config.NewStaticReminderSettings(settings),
	})
	return fixture{job: job, db: db, repo: repo, mail: mail, clock: clk, node: node}
}

func defaultSettings() config.ReminderSettings {
	s := config.DefaultReminderSettings()
	s.Recipients = []string{"bids@example.com"}
	return s
}

func (f fixture) seed(t *testing.T, number, end string, details *string) *biddomain.Bid {
	t.Helper()
	bid := &biddomain.Bid{
		ID:            f.node.Generate(),
		GemBidNo:      number,
		BidDetails:    details,
		StartDate:     "2024-05-01",
		EndDate:       end,
		Status:        biddomain.StatusShortlisted,
		StatusHistory: datatypes.NewJSONSlice([]biddomain.StatusChange{}),
		Documents:     datatypes.NewJSONSlice([]biddomain.Document{}),
		CreatedDate:   f.clock.Now(),
	}
	require.NoError(t, f.repo.Insert(context.Background(), f.db, bid))
	return bid
}

func (f fixture) reminded(t *testing.T, id snowflake.ID) bool {
	t.Helper()
	bid, err := f.repo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	return bid.ReminderSent
}

func TestRunOnceSendsForBidsEndingTomorrow(t *testing.T) {
	f := newFixture(t, defaultSettings())
	ctx := context.Background()

	details := "Supply of 40 laptops"
	due := f.seed(t, "GEM/2024/B/11", "2024-05-11T17:00", &details)
	later := f.seed(t, "GEM/2024/B/12", "2024-05-12", nil)

	f.mail.On("SendTemplate",
		[]string{"bids@example.com"},
		"This GEM/2024/B/11 has been end on May 11, 2024",
		"bid_reminder",
		mock.MatchedBy(func(data any) bool {
			return assert.ObjectsAreEqual(struct {
				GemBidNo string
				Details  string
				EndDate  string
			}{"GEM/2024/B/11", details, "May 11, 2024"}, data)
		}),
	).Return(nil).Once()

	summary, err := f.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", summary.Date)
	assert.Equal(t, 1, summary.Found)
	assert.Equal(t, 1, summary.Sent)
	assert.NotEmpty(t, summary.RunID)
	assert.True(t, f.reminded(t, due.ID))
	assert.False(t, f.reminded(t, later.ID))

	summary, err = f.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Found)
	f.mail.AssertExpectations(t)
}

func TestRunOnceLeavesFailedBidsForRetry(t *testing.T) {
	f := newFixture(t, defaultSettings())
	ctx := context.Background()

	bid := f.seed(t, "GEM-FAIL", "2024-05-11", nil)
	f.mail.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down")).Once()

	summary, err := f.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, f.reminded(t, bid.ID))

	f.mail.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	summary, err = f.job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.True(t, f.reminded(t, bid.ID))
}

func TestRunOnceDisabled(t *testing.T) {
	settings := defaultSettings()
	settings.Enabled = false
	f := newFixture(t, settings)

	f.seed(t, "GEM-OFF", "2024-05-11", nil)
	summary, err := f.job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Found)
	f.mail.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleFiresDailyAndOnStartup(t *testing.T) {
	f := newFixture(t, defaultSettings())
	f.mail.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	assert.Equal(t, "stopped", f.job.Status().Status)

	f.job.Start(context.Background())
	status := f.job.Status()
	assert.Equal(t, "running", status.Status)
	require.Len(t, status.Jobs, 2)
	assert.Equal(t, JobID, status.Jobs[0].ID)
	assert.Equal(t, JobName, status.Jobs[0].Name)
	assert.Equal(t, time.Date(2024, 5, 10, 3, 30, 0, 0, time.UTC), *status.Jobs[0].NextRun)
	assert.Equal(t, StartupID, status.Jobs[1].ID)

	bid := f.seed(t, "GEM-11", "2024-05-11", nil)
	f.clock.Advance(30 * time.Second)
	assert.True(t, f.reminded(t, bid.ID))
	require.Len(t, f.job.Status().Jobs, 1)

	next := f.seed(t, "GEM-12", "2024-05-12", nil)
	f.clock.Advance(24 * time.Hour)
	assert.True(t, f.reminded(t, next.ID))
	assert.Equal(t, time.Date(2024, 5, 11, 3, 30, 0, 0, time.UTC), *f.job.Status().Jobs[0].NextRun)

	f.job.Stop()
	assert.Equal(t, "stopped", f.job.Status().Status)
	assert.Zero(t, f.clock.Pending())
}

func TestNextRun(t *testing.T) {
	now := time.Date(2024, 5, 10, 3, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 3, 30, 0, 0, time.UTC), NextRun(now, 3, 30))
	assert.Equal(t, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), NextRun(now, 9, 0))
}

func TestSubjectAndDate(t *testing.T) {
	assert.Equal(t, "This GEM-1 has been end on March 05, 2024", Subject("", "GEM-1", FormatEndDate("2024-03-05")))
	assert.Equal(t, "[CRM] This GEM-1 has been end on soon", Subject(" [CRM] ", "GEM-1", FormatEndDate("soon")))
}
