package prstore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

func dryRunDB(t *testing.T) *gorm.DB {
	DB, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=postgres dbname=procurement sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return DB
}

// toSQL renders the statement built by query without touching a database.
func toSQL(t *testing.T, query func(i impl) *gorm.DB) string {
	return dryRunDB(t).ToSQL(func(tx *gorm.DB) *gorm.DB {
		list := []dbmodels.PurchaseRequest{}
		return query(impl{db: tx}).Find(&list)
	})
}

func TestQueries(t *testing.T) {
	t.Run("list filter check", func(t *testing.T) {
		filter := prapimodels.PRFilter{
			Pagination: apimodels.Pagination{Page: 2, Limit: 10},
			Status:     models.PRStatusSubmitted,
			Department: models.DepartmentIT,
			Search:     "laptop",
			SortBy:     "title",
			SortOrder:  "asc",
		}
		sql := toSQL(t, func(i impl) *gorm.DB {
			page, limit := filter.GetPage()
			return i.setPage(i.listQuery(filter).Order(filter.GetSort()), page, limit)
		})
		require.Contains(t, sql, "is_deleted = false")
		require.Contains(t, sql, "status = 'Submitted'")
		require.Contains(t, sql, "department = 'IT'")
		require.Contains(t, sql, "title ~* 'laptop'")
		require.Contains(t, sql, "ORDER BY title asc")
		require.Contains(t, sql, "LIMIT 10 OFFSET 10")
	})
	t.Run("search filter check", func(t *testing.T) {
		low := 100.0
		filter := prapimodels.SearchFilter{
			Priority:  models.PriorityHigh,
			Requestor: "Anna",
			BudgetMin: &low,
			DateFrom:  "2025-01-01",
			DateTo:    "2025-01-31",
		}
		sql := toSQL(t, func(i impl) *gorm.DB { return i.searchQuery(filter) })
		require.Contains(t, sql, "priority = 'High'")
		require.Contains(t, sql, "requestor = 'Anna'")
		require.Contains(t, sql, "estimated_budget >= 100")
		require.Contains(t, sql, "created_at >= '2025-01-01")
		require.Contains(t, sql, "created_at < '2025-02-01")
		require.NotContains(t, sql, "status =")
	})
	t.Run("export filter check", func(t *testing.T) {
		filter := prapimodels.ExportFilter{Department: models.DepartmentHR}
		sql := toSQL(t, func(i impl) *gorm.DB { return i.exportQuery(filter) })
		require.Contains(t, sql, "department = 'HR'")
		require.NotContains(t, sql, "created_at >=")
	})
	t.Run("queries do not leak into each other check", func(t *testing.T) {
		sql := toSQL(t, func(i impl) *gorm.DB {
			i.listQuery(prapimodels.PRFilter{Status: models.PRStatusDraft})
			return i.active()
		})
		require.NotContains(t, sql, "status =")
	})
	t.Run("row lock check", func(t *testing.T) {
		sql := dryRunDB(t).ToSQL(func(tx *gorm.DB) *gorm.DB {
			return impl{db: tx}.lockHeader("pr-1", &dbmodels.PurchaseRequest{})
		})
		require.Contains(t, sql, "FOR UPDATE")
		require.Contains(t, sql, "id = 'pr-1'")
	})
}
