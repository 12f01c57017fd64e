package prstore

import (
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.PurchaseRequest) (id string, err error)
	Save(rec dbmodels.PurchaseRequest) error
	AppendAudit(id string, entries []dbmodels.AuditEntry) error
	GetByID(id string) (rec *dbmodels.PurchaseRequest, err error)
	GetForUpdate(id string) (rec *dbmodels.PurchaseRequest, err error)
	CountAll() (count int64, err error)
	ListCount(filter prapimodels.PRFilter) (count int64, err error)
	List(filter prapimodels.PRFilter) (list []dbmodels.PurchaseRequest, err error)
	SearchCount(filter prapimodels.SearchFilter) (count int64, err error)
	Search(filter prapimodels.SearchFilter) (list []dbmodels.PurchaseRequest, err error)
	ExportList(filter prapimodels.ExportFilter) (list []dbmodels.PurchaseRequest, err error)
	StatsOverview() (overview dbmodels.StatsOverview, err error)
	DepartmentStats() (list []dbmodels.DepartmentStat, err error)
	StatusCounts() (list []dbmodels.StatusCount, err error)
	ListRecent(limit int) (list []dbmodels.PurchaseRequest, err error)
	ListWithPendingApprovals(limit int) (list []dbmodels.PurchaseRequest, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

// Create stores the header only; children go through their own stores.
func (i impl) Create(rec dbmodels.PurchaseRequest) (id string, err error) {
	err = i.db.Omit(clause.Associations).
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Save overwrites the header. The audit log is append-only and never written here.
func (i impl) Save(rec dbmodels.PurchaseRequest) error {
	tx := i.db.
		Model(&rec).
		Select("*").
		Omit(clause.Associations, "id", "audit_log", "created_at").
		Updates(&rec)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.NotFoundErrorf("purchase request %s", rec.ID)
	}
	return nil
}

func (i impl) AppendAudit(id string, entries []dbmodels.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	body, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "error marshalling audit entries")
	}
	tx := i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Where("id = ?", id).
		UpdateColumn("audit_log", gorm.Expr("audit_log || ?::jsonb", string(body)))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.NotFoundErrorf("purchase request %s", id)
	}
	return nil
}

func (i impl) GetByID(id string) (*dbmodels.PurchaseRequest, error) {
	rec := dbmodels.PurchaseRequest{}
	err := i.withChildren(i.db).
		Where("id = ?", id).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// GetForUpdate holds the header row lock until the surrounding transaction ends,
// then reads the aggregate. Writers on other instances queue behind it.
func (i impl) GetForUpdate(id string) (*dbmodels.PurchaseRequest, error) {
	header := dbmodels.PurchaseRequest{}
	err := i.lockHeader(id, &header).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return i.GetByID(id)
}

func (i impl) lockHeader(id string, header *dbmodels.PurchaseRequest) *gorm.DB {
	return i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		Take(header)
}

// CountAll includes soft-deleted requests; numbering never goes backwards.
func (i impl) CountAll() (count int64, err error) {
	err = i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Count(&count).
		Error
	return count, err
}

func (i impl) ListCount(filter prapimodels.PRFilter) (count int64, err error) {
	var rowCount int64
	err = i.listQuery(filter).Count(&rowCount).Error
	if err != nil {
		log.WithError(err).Error("error counting purchase requests")
		return 0, errors.New("error counting purchase requests")
	}
	return rowCount, nil
}

func (i impl) List(filter prapimodels.PRFilter) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	page, limit := filter.GetPage()
	tx := i.listQuery(filter).Order(filter.GetSort())
	tx = i.setPage(tx, page, limit)
	err = i.withChildren(tx).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) SearchCount(filter prapimodels.SearchFilter) (count int64, err error) {
	var rowCount int64
	err = i.searchQuery(filter).Count(&rowCount).Error
	if err != nil {
		log.WithError(err).Error("error counting search results")
		return 0, errors.New("error counting search results")
	}
	return rowCount, nil
}

func (i impl) Search(filter prapimodels.SearchFilter) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	page, limit := filter.GetPage()
	tx := i.searchQuery(filter).Order("created_at desc")
	tx = i.setPage(tx, page, limit)
	err = i.withChildren(tx).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ExportList(filter prapimodels.ExportFilter) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	err = i.exportQuery(filter).
		Order("created_at desc").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) StatsOverview() (overview dbmodels.StatsOverview, err error) {
	err = i.active().
		Select(`count(*) as total_prs,
			count(*) filter (where status = ?) as draft_prs,
			count(*) filter (where status = ?) as submitted_prs,
			count(*) filter (where status = ?) as approved_prs,
			count(*) filter (where status = ?) as rejected_prs,
			coalesce(sum(estimated_budget), 0) as total_value,
			coalesce(avg(estimated_budget), 0) as avg_value`,
			models.PRStatusDraft, models.PRStatusSubmitted, models.PRStatusApproved, models.PRStatusRejected).
		Scan(&overview).
		Error
	return overview, err
}

func (i impl) DepartmentStats() (list []dbmodels.DepartmentStat, err error) {
	list = []dbmodels.DepartmentStat{}
	err = i.active().
		Select("department, count(*) as count, coalesce(sum(estimated_budget), 0) as total_value").
		Group("department").
		Order("count desc").
		Scan(&list).
		Error
	return list, err
}

func (i impl) StatusCounts() (list []dbmodels.StatusCount, err error) {
	list = []dbmodels.StatusCount{}
	err = i.active().
		Select("status, count(*) as count").
		Group("status").
		Order("status").
		Scan(&list).
		Error
	return list, err
}

func (i impl) ListRecent(limit int) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	err = i.withChildren(i.active()).
		Order("created_at desc").
		Limit(limit).
		Find(&list).
		Error
	return list, err
}

func (i impl) ListWithPendingApprovals(limit int) (list []dbmodels.PurchaseRequest, err error) {
	list = []dbmodels.PurchaseRequest{}
	subQuery := i.db.
		Model(&dbmodels.Approval{}).
		Select("pr_id").
		Where("status = ?", models.ApprovalStatusPending)
	err = i.withChildren(i.active()).
		Where("id in (?)", subQuery).
		Order("created_at desc").
		Limit(limit).
		Find(&list).
		Error
	return list, err
}

func (i impl) active() *gorm.DB {
	return i.db.
		Model(&dbmodels.PurchaseRequest{}).
		Where("is_deleted = false")
}

func (i impl) withChildren(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_number")
		}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("upload_date")
		}).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("level")
		})
}

func (i impl) listQuery(filter prapimodels.PRFilter) *gorm.DB {
	tx := i.active()
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		tx = tx.Where("department = ?", filter.Department)
	}
	if filter.Requestor != "" {
		tx = tx.Where("requestor = ?", filter.Requestor)
	}
	if filter.Priority != "" {
		tx = tx.Where("priority = ?", filter.Priority)
	}
	if filter.Search != "" {
		tx = i.addPattern(tx, filter.Search)
	}
	return tx
}

func (i impl) searchQuery(filter prapimodels.SearchFilter) *gorm.DB {
	tx := i.active()
	if filter.Query != "" {
		tx = i.addPattern(tx, filter.Query)
	}
	if filter.Department != "" {
		tx = tx.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		tx = tx.Where("priority = ?", filter.Priority)
	}
	if filter.Requestor != "" {
		tx = tx.Where("requestor = ?", filter.Requestor)
	}
	if filter.BudgetMin != nil {
		tx = tx.Where("estimated_budget >= ?", *filter.BudgetMin)
	}
	if filter.BudgetMax != nil {
		tx = tx.Where("estimated_budget <= ?", *filter.BudgetMax)
	}
	return i.addDateRange(tx, filter.GetDateRange())
}

func (i impl) exportQuery(filter prapimodels.ExportFilter) *gorm.DB {
	tx := i.active()
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		tx = tx.Where("department = ?", filter.Department)
	}
	return i.addDateRange(tx, filter.GetDateRange())
}

func (i impl) addPattern(tx *gorm.DB, pattern string) *gorm.DB {
	return tx.Where("(pr_number ~* ? or title ~* ? or business_justification ~* ?)", pattern, pattern, pattern)
}

func (i impl) addDateRange(tx *gorm.DB, dateRange prapimodels.DateRange) *gorm.DB {
	if dateRange.From != nil {
		tx = tx.Where("created_at >= ?", *dateRange.From)
	}
	if dateRange.Before != nil {
		tx = tx.Where("created_at < ?", *dateRange.Before)
	}
	return tx
}

func (i impl) setPage(tx *gorm.DB, page, limit int) *gorm.DB {
	offset := (page - 1) * limit
	return tx.Limit(limit).Offset(offset)
}
