package approvalchainhandler

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	approvalstore "procurement-backend/lib/approval-chain/store"
	"procurement-backend/lib/metrics"
	prhandler "procurement-backend/lib/purchase-request"
	prstore "procurement-backend/lib/purchase-request/store"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakePRStore struct {
	prstore.Provider
	prs       map[string]dbmodels.PurchaseRequest
	forUpdate []string
}

func (f *fakePRStore) GetForUpdate(id string) (*dbmodels.PurchaseRequest, error) {
	f.forUpdate = append(f.forUpdate, id)
	return f.GetByID(id)
}

func (f *fakePRStore) GetByID(id string) (*dbmodels.PurchaseRequest, error) {
	rec, ok := f.prs[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type fakeApprovalStore struct {
	approvalstore.Provider
	prs     map[string]dbmodels.PurchaseRequest
	entries map[string]dbmodels.Approval
}

func (f *fakeApprovalStore) Save(rec dbmodels.Approval) error {
	rec.PurchaseRequest = nil
	f.entries[rec.ID] = rec
	return nil
}

func (f *fakeApprovalStore) GetByLevel(prID string, level int) (*dbmodels.Approval, error) {
	for _, rec := range f.entries {
		if rec.PRID == prID && rec.Level == level {
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovalStore) pending(keep func(rec dbmodels.Approval) bool) []dbmodels.Approval {
	list := []dbmodels.Approval{}
	for _, rec := range f.entries {
		pr := f.prs[rec.PRID]
		if rec.Status != models.ApprovalStatusPending || pr.IsDeleted || !keep(rec) {
			continue
		}
		rec.PurchaseRequest = &pr
		list = append(list, rec)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].DueDate.Before(list[b].DueDate) })
	return list
}

func (f *fakeApprovalStore) ListOverdue(now time.Time) ([]dbmodels.Approval, error) {
	return f.pending(func(rec dbmodels.Approval) bool { return rec.DueDate.Before(now) }), nil
}

func (f *fakeApprovalStore) ListPending(approverEmail string, now time.Time) ([]dbmodels.Approval, error) {
	return f.pending(func(rec dbmodels.Approval) bool {
		return rec.ApproverEmail == approverEmail && !rec.DueDate.Before(now)
	}), nil
}

func (f *fakeApprovalStore) ListForReminder(now time.Time, maxReminders, limit int) ([]dbmodels.Approval, error) {
	list := f.pending(func(rec dbmodels.Approval) bool {
		return rec.DueDate.Before(now) && rec.ReminderCount < maxReminders &&
			(rec.LastReminderDate == nil || rec.LastReminderDate.Before(now.Add(-24*time.Hour)))
	})
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeApprovalStore) Stats(prID string, now time.Time) (dbmodels.ApprovalStats, error) {
	stats := dbmodels.ApprovalStats{}
	for _, rec := range f.entries {
		if rec.PRID != prID {
			continue
		}
		stats.Total++
		switch rec.Status {
		case models.ApprovalStatusPending:
			stats.Pending++
			if rec.IsOverdue(now) {
				stats.Overdue++
			}
		case models.ApprovalStatusApproved:
			stats.Approved++
		case models.ApprovalStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

type fakeMailer struct {
	to []string
}

func (f *fakeMailer) SendEMail(to, subject, message string) error {
	f.to = append(f.to, to)
	return nil
}

type env struct {
	prs       *fakePRStore
	approvals *fakeApprovalStore
	mailer    *fakeMailer
	metrics   *metrics.Metrics
	handler   impl
}

func newEnv() *env {
	prs := map[string]dbmodels.PurchaseRequest{
		"pr-1": {BaseModel: dbmodels.BaseModel{ID: "pr-1"}, PRNumber: "PR-2025-000001", Title: "Laptops", Status: models.PRStatusSubmitted},
		"pr-2": {BaseModel: dbmodels.BaseModel{ID: "pr-2"}, PRNumber: "PR-2025-000002", Title: "Desks", Status: models.PRStatusSubmitted, IsDeleted: true},
	}
	entries := map[string]dbmodels.Approval{}
	add := func(id, prID string, level int, email string, due time.Time) {
		entries[id] = dbmodels.Approval{
			BaseModel:     dbmodels.BaseModel{ID: id},
			PRID:          prID,
			Level:         level,
			LevelName:     models.LevelManager,
			Approver:      "Boris",
			ApproverEmail: email,
			DueDate:       due,
			Status:        models.ApprovalStatusPending,
		}
	}
	add("a-1", "pr-1", 1, "boris@example.com", testNow.Add(-72*time.Hour))
	add("a-2", "pr-1", 2, "vera@example.com", testNow.Add(48*time.Hour))
	add("a-3", "pr-1", 3, "boris@example.com", testNow.Add(24*time.Hour))
	add("a-4", "pr-2", 1, "boris@example.com", testNow.Add(-24*time.Hour))

	e := &env{
		prs:       &fakePRStore{prs: prs},
		approvals: &fakeApprovalStore{prs: prs, entries: entries},
		mailer:    &fakeMailer{},
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}
	stores := prhandler.Stores{
		PR:        e.prs,
		Approvals: e.approvals,
	}
	e.handler = impl{
		stores:       stores,
		run:          func(fn func(s prhandler.Stores) error) error { return fn(stores) },
		mailer:       e.mailer,
		metrics:      e.metrics,
		lockWait:     200 * time.Millisecond,
		maxReminders: 3,
		batchSize:    10,
		now:          func() time.Time { return testNow },
	}
	return e
}

func TestEntryCommands(t *testing.T) {
	ctx := context.Background()
	t.Run("delegate twice check", func(t *testing.T) {
		e := newEnv()
		view, err := e.handler.Delegate(ctx, "boris@example.com", "pr-1", 2, prapimodels.DelegateRequest{DelegateTo: "Gleb", Reason: "vacation"})
		require.NoError(t, err)
		require.Equal(t, models.ApprovalStatusDelegated, view.Status)
		require.Equal(t, "Boris", view.DelegatedFrom)
		require.Equal(t, "Gleb", view.DelegatedTo)
		require.Equal(t, "PR-2025-000001", view.PRNumber)
		require.Equal(t, models.ApprovalStatusDelegated, e.approvals.entries["a-2"].Status)

		_, err = e.handler.Delegate(ctx, "boris@example.com", "pr-1", 2, prapimodels.DelegateRequest{DelegateTo: "Gleb"})
		require.True(t, errors.Is(err, models.ErrAlreadyProcessed))
	})
	t.Run("entry change locks request row check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Escalate(ctx, "anna@example.com", "pr-1", 1, "")
		require.NoError(t, err)
		_, err = e.handler.Stats("pr-1")
		require.NoError(t, err)
		require.Equal(t, []string{"pr-1"}, e.prs.forUpdate)
	})
	t.Run("delegate without delegate check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Delegate(ctx, "boris@example.com", "pr-1", 2, prapimodels.DelegateRequest{})
		require.True(t, errors.Is(err, models.ErrValidation))
	})
	t.Run("reject entry keeps others check", func(t *testing.T) {
		e := newEnv()
		view, err := e.handler.RejectEntry(ctx, "vera@example.com", "pr-1", 2, "no budget")
		require.NoError(t, err)
		require.Equal(t, models.ApprovalStatusRejected, view.Status)
		require.Equal(t, "no budget", view.Comments)
		require.Equal(t, models.ApprovalStatusPending, e.approvals.entries["a-1"].Status)
	})
	t.Run("escalate processed entry check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.RejectEntry(ctx, "vera@example.com", "pr-1", 2, "")
		require.NoError(t, err)
		view, err := e.handler.Escalate(ctx, "anna@example.com", "pr-1", 2, "needs director")
		require.NoError(t, err)
		require.True(t, view.IsEscalated)
		require.Equal(t, "anna@example.com", view.EscalatedBy)
		require.Equal(t, "needs director", view.EscalationReason)
	})
	t.Run("unknown level check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Escalate(ctx, "anna@example.com", "pr-1", 7, "")
		require.True(t, errors.Is(err, models.ErrNotFound))
		require.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CommandFailures.WithLabelValues("escalate", "not found")))
	})
	t.Run("deleted request check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Escalate(ctx, "anna@example.com", "pr-2", 1, "")
		require.True(t, errors.Is(err, models.ErrNotFound))
	})
	t.Run("remind repeats check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Remind(ctx, "anna@example.com", "pr-1", 1)
		require.NoError(t, err)
		view, err := e.handler.Remind(ctx, "anna@example.com", "pr-1", 1)
		require.NoError(t, err)
		require.Equal(t, 2, view.ReminderCount)
		require.Equal(t, 3, view.DaysOverdue)
		require.Equal(t, []string{"boris@example.com", "boris@example.com"}, e.mailer.to)
		require.Equal(t, 2.0, testutil.ToFloat64(e.metrics.RemindersSent))
	})
	t.Run("remind without actor check", func(t *testing.T) {
		e := newEnv()
		_, err := e.handler.Remind(ctx, "", "pr-1", 1)
		require.True(t, errors.Is(err, models.ErrValidation))
		require.Empty(t, e.mailer.to)
	})
}

func TestRemindOverdue(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	t.Run("first sweep check", func(t *testing.T) {
		sent, err := e.handler.RemindOverdue(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, sent)
		require.Equal(t, 1, e.approvals.entries["a-1"].ReminderCount)
		require.Equal(t, 0, e.approvals.entries["a-4"].ReminderCount)
	})
	t.Run("same day sweep check", func(t *testing.T) {
		sent, err := e.handler.RemindOverdue(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, sent)
	})
	t.Run("next day sweep check", func(t *testing.T) {
		e.handler.now = func() time.Time { return testNow.Add(25 * time.Hour) }
		sent, err := e.handler.RemindOverdue(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, sent)
		require.Equal(t, 2, e.approvals.entries["a-1"].ReminderCount)
		require.Equal(t, 1, e.approvals.entries["a-3"].ReminderCount)
		require.Equal(t, 0, e.approvals.entries["a-2"].ReminderCount)
	})
}

func TestQueries(t *testing.T) {
	e := newEnv()
	t.Run("overdue check", func(t *testing.T) {
		list, err := e.handler.Overdue()
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "a-1", list[0].ID)
		require.True(t, list[0].IsOverdue)
		require.Equal(t, "Laptops", list[0].PRTitle)
	})
	t.Run("pending excludes overdue check", func(t *testing.T) {
		list, err := e.handler.Pending("boris@example.com")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "a-3", list[0].ID)
		_, err = e.handler.Pending("")
		require.True(t, errors.Is(err, models.ErrValidation))
	})
	t.Run("stats check", func(t *testing.T) {
		stats, err := e.handler.Stats("pr-1")
		require.NoError(t, err)
		require.Equal(t, dbmodels.ApprovalStats{Total: 3, Pending: 3, Overdue: 1}, stats)
		_, err = e.handler.Stats("pr-2")
		require.True(t, errors.Is(err, models.ErrNotFound))
	})
}
