//go:build integration

package prhandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"procurement-backend/db"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

func newDBEnv(t *testing.T) *env {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("procurement"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db.DB = nil
	require.NoError(t, db.Open(dsn, false, true))
	t.Cleanup(func() {
		db.Close()
		db.DB = nil
	})

	e := newEnv()
	e.handler.stores = NewStores(db.DB)
	e.handler.run = NewTxRunner(db.DB)
	return e
}

func TestPostgresStores(t *testing.T) {
	e := newDBEnv(t)
	ctx := context.Background()
	h := e.handler

	created := mustCreate(t, e, newCreate())

	t.Run("aggregate round trip check", func(t *testing.T) {
		view, err := h.GetByID(created.ID)
		require.NoError(t, err)
		require.Equal(t, "PR-2025-000001", view.PRNumber)
		require.Len(t, view.Items, 2)
		require.Equal(t, 5000.0, view.Items[0].Total)
		require.Len(t, view.Approvals, 2)
		require.Len(t, view.AuditLog, 1)
		payload, ok := view.AuditLog[0].Payload.(dbmodels.CreatedPayload)
		require.True(t, ok)
		require.Equal(t, 2, payload.ItemCount)
	})
	t.Run("duplicate number check", func(t *testing.T) {
		e.allocator.numbers = []string{created.PRNumber}
		view := mustCreate(t, e, newCreate())
		require.Equal(t, "PR-2025-000002", view.PRNumber)
	})
	t.Run("replace items reuses numbers check", func(t *testing.T) {
		items := []prapimodels.ItemData{
			{Description: "Dock", Category: models.ItemCategoryITHardware, Quantity: 1, UnitPrice: 100},
			{Description: "Cable", Category: models.ItemCategoryITHardware, Quantity: 2, UnitPrice: 5},
		}
		view, err := h.Update(ctx, requestor, created.ID, prapimodels.PRUpdate{Items: &items})
		require.NoError(t, err)
		require.Equal(t, 1, view.Items[0].ItemNumber)
		stored, err := h.stores.Items.ListByPR(created.ID)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		require.Equal(t, "Dock", stored[0].Description)
	})
	t.Run("concurrent audit appends check", func(t *testing.T) {
		wg := sync.WaitGroup{}
		for n := 0; n < 10; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				entry := dbmodels.NewAuditEntry(requestor, testNow, dbmodels.DeletedPayload{})
				require.NoError(t, h.stores.PR.AppendAudit(created.ID, []dbmodels.AuditEntry{entry}))
			}()
		}
		wg.Wait()
		rec, err := h.stores.PR.GetByID(created.ID)
		require.NoError(t, err)
		require.Len(t, rec.AuditLog, 12)
	})
	t.Run("rollback on failure check", func(t *testing.T) {
		err := h.run(func(s Stores) error {
			rec, err := s.PR.GetByID(created.ID)
			require.NoError(t, err)
			rec.Title = "changed inside a failed transaction"
			require.NoError(t, s.PR.Save(*rec))
			return errors.New("abort")
		})
		require.Error(t, err)
		view, err := h.GetByID(created.ID)
		require.NoError(t, err)
		require.Equal(t, "Laptops for the QA team", view.Title)
	})
	t.Run("workflow and approval queries check", func(t *testing.T) {
		_, err := h.Submit(ctx, requestor, created.ID)
		require.NoError(t, err)
		_, err = h.Approve(ctx, manager, created.ID, prapimodels.ApproveRequest{Level: 1})
		require.NoError(t, err)

		overdue, err := h.stores.Approvals.ListOverdue(testNow.Add(80 * time.Hour))
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		overdue, err = h.stores.Approvals.ListOverdue(testNow.Add(100 * time.Hour))
		require.NoError(t, err)
		require.Len(t, overdue, 3)
		require.NotNil(t, overdue[0].PurchaseRequest)

		pending, err := h.stores.Approvals.ListPending("VERA@example.com", testNow)
		require.NoError(t, err)
		require.Len(t, pending, 2)

		stats, err := h.stores.Approvals.Stats(created.ID, testNow)
		require.NoError(t, err)
		require.Equal(t, dbmodels.ApprovalStats{Total: 2, Pending: 1, Approved: 1}, stats)
	})
	t.Run("reports exclude deleted check", func(t *testing.T) {
		draft := mustCreate(t, e, newCreate())
		require.NoError(t, h.Delete(ctx, requestor, draft.ID))

		list, count, err := h.List(prapimodels.PRFilter{Search: "qa team"})
		require.NoError(t, err)
		require.Equal(t, int64(2), count)
		require.Len(t, list, 2)

		_, count, err = h.Search(prapimodels.SearchFilter{Status: models.PRStatusSubmitted})
		require.NoError(t, err)
		require.Equal(t, int64(1), count)

		stats, err := h.Stats()
		require.NoError(t, err)
		require.Equal(t, int64(2), stats.Overview.TotalPRs)
		require.Equal(t, int64(1), stats.Overview.SubmittedPRs)

		dashboard, err := h.Dashboard()
		require.NoError(t, err)
		require.Len(t, dashboard.RecentPRs, 2)
		require.Len(t, dashboard.PendingApprovals, 2)

		count, err = h.stores.PR.CountAll()
		require.NoError(t, err)
		require.Equal(t, int64(3), count)
	})
}

// Two instances approving different levels of the same request at once: the later
// transaction waits on the header row and promotes the request.
func TestConcurrentApprovalsAcrossInstances(t *testing.T) {
	e := newDBEnv(t)
	ctx := context.Background()
	h := e.handler

	created := mustCreate(t, e, newCreate())
	_, err := h.Submit(ctx, requestor, created.ID)
	require.NoError(t, err)

	approveOnOwnTx := func(level int) error {
		return h.run(func(s Stores) error {
			prev, err := h.loadForUpdate(s, created.ID)
			if err != nil {
				return err
			}
			outcome, err := workflow.Approve(prev, level, manager, "", time.Now())
			if err != nil {
				return err
			}
			time.Sleep(50 * time.Millisecond)
			return persist(s, prev, outcome)
		})
	}

	start := make(chan struct{})
	errs := make(chan error, 2)
	wg := sync.WaitGroup{}
	for _, level := range []int{1, 2} {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			<-start
			errs <- approveOnOwnTx(level)
		}(level)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	t.Run("request promoted check", func(t *testing.T) {
		view, err := h.GetByID(created.ID)
		require.NoError(t, err)
		require.Equal(t, models.PRStatusApproved, view.Status)
		require.NotNil(t, view.ApprovedDate)
		for _, approval := range view.Approvals {
			require.Equal(t, models.ApprovalStatusApproved, approval.Status)
		}
		require.Len(t, view.AuditLog, 4)
	})
}
