package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/internal/config"
	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/model"
	"github.com/jakechorley/weekend-duty/pkg/core/roster"
	"github.com/jakechorley/weekend-duty/pkg/core/services"
	"github.com/jakechorley/weekend-duty/pkg/db"
)

func newTestApp(t *testing.T) (*AppContext, *cobra.Command, *bytes.Buffer) {
	t.Helper()

	team := []model.TeamMember{
		{ID: 1, Name: "Aakash", Priority: 2, Color: "#3b82f6", IsActive: true, AccessKey: "aakash-key"},
		{ID: 2, Name: "Shrishti", Priority: 1, Color: "#ef4444", IsActive: true, AccessKey: "shrishti-key"},
	}
	cal, err := calendar.New(time.UTC, nil)
	require.NoError(t, err)

	database := db.NewMemoryDB()
	out := &bytes.Buffer{}
	app := &AppContext{
		Env:      "test",
		Cfg:      &config.Config{},
		Database: database,
		Scheduler: services.NewScheduler(database, roster.NewDirectory(team), cal, zap.NewNop(),
			services.WithClock(func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) })),
		Logger: zap.NewNop(),
		Ctx:    context.Background(),
		Out:    out,
	}

	root := &cobra.Command{Use: "duty"}
	root.AddCommand(BookCmd(app), CancelCmd(app), MembersCmd(app), ScheduleCmd(app),
		ResolveCmd(app), ExportCmd(app), PublishCmd(app), TicketsCmd(app), InteractiveCmd(app))

	return app, root, out
}

func TestInteractiveSession_BookingFlow(t *testing.T) {
	app, root, out := newTestApp(t)

	script := strings.Join([]string{
		"book Aakash 2025-06-07",
		"book Shrishti 2025-06-07",
		"tickets log Shrishti 2025-06-07 INC-1 INC-2 --priority P1 --notes \"db failover\"",
		"book Aakash 2025-06-04",
		"frobnicate",
		"exit",
		"book Aakash 2025-06-14",
	}, "\n")

	require.NoError(t, runSession(root, strings.NewReader(script), out))

	text := out.String()
	assert.Contains(t, text, "✓ Aakash is on duty on 2025-06-07")
	assert.Contains(t, text, "2025-06-07  Shrishti wins over Aakash")
	assert.Contains(t, text, "✓ Logged 2 ticket(s) on 2025-06-07")
	assert.Contains(t, text, model.ErrInvalidDateKind.Error())
	assert.Contains(t, text, "Unknown command: frobnicate")
	assert.Contains(t, text, "Goodbye!")

	// Nothing after exit runs
	bookings, err := app.Scheduler.ListUserBookings(context.Background(), "Aakash", "2025-06")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	tickets, err := app.Scheduler.ListTickets(context.Background(), "2025-06-07")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.TicketPriorityP1, tickets[0].Priority)
	assert.Equal(t, "db failover", tickets[0].Notes)
}

func TestInteractiveSession_FlagsResetBetweenRuns(t *testing.T) {
	app, root, out := newTestApp(t)

	script := strings.Join([]string{
		"book Aakash 2025-06-07",
		"tickets log Aakash 2025-06-07 INC-1 --priority P1",
		"tickets log Aakash 2025-06-07 INC-2",
	}, "\n")

	require.NoError(t, runSession(root, strings.NewReader(script), out))

	tickets, err := app.Scheduler.ListTickets(context.Background(), "2025-06-07")
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	priorities := []model.TicketPriority{tickets[0].Priority, tickets[1].Priority}
	assert.ElementsMatch(t, []model.TicketPriority{model.TicketPriorityP1, model.TicketPriorityP3}, priorities)
}

func TestScheduleCommandOutput(t *testing.T) {
	app, root, out := newTestApp(t)

	_, err := app.Scheduler.RequestBooking(context.Background(), "Aakash", "2025-06-07")
	require.NoError(t, err)

	root.SetArgs([]string{"schedule", "2025-06"})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "Weekend duty for 2025-06")
	assert.Regexp(t, `2025-06-07\s+Saturday\s+Aakash`, text)
	assert.Regexp(t, `2025-06-08\s+Sunday\s+-`, text)
	assert.Regexp(t, `Shrishti\s+0\s+0\s+2`, text)
	assert.Regexp(t, `Aakash\s+1\s+0\s+1`, text)
}

func TestPublishCommand_RequiresSheet(t *testing.T) {
	_, root, _ := newTestApp(t)
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.SetArgs([]string{"publish", "2025-06"})
	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rotaSheetID is not configured")
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "plain", line: "book Aakash 2025-06-07", want: []string{"book", "Aakash", "2025-06-07"}},
		{name: "double quotes", line: `tickets log A 2025-06-07 X --notes "two words"`, want: []string{"tickets", "log", "A", "2025-06-07", "X", "--notes", "two words"}},
		{name: "single quotes", line: `book 'Aakash K' 2025-06-07`, want: []string{"book", "Aakash K", "2025-06-07"}},
		{name: "extra spaces", line: "  members   ", want: []string{"members"}},
		{name: "unclosed", line: `book "Aakash`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
