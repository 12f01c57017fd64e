package prhandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	approvalstore "procurement-backend/lib/approval-chain/store"
	xlsexport "procurement-backend/lib/export/xls"
	"procurement-backend/lib/metrics"
	prnumber "procurement-backend/lib/pr-number"
	attachmentstore "procurement-backend/lib/purchase-request/attachment-store"
	prstore "procurement-backend/lib/purchase-request/store"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

// memDB keeps rows the way the tables do: children separate from the header.
type memDB struct {
	prs         map[string]dbmodels.PurchaseRequest
	items       map[string]dbmodels.PRItem
	attachments map[string]dbmodels.Attachment
	approvals   map[string]dbmodels.Approval
	failSave    error
	// failAttachmentSave breaks attachment writes only.
	failAttachmentSave error
	// forUpdate lists the ids read with a row lock, in order.
	forUpdate []string
}

func newMemDB() *memDB {
	return &memDB{
		prs:         map[string]dbmodels.PurchaseRequest{},
		items:       map[string]dbmodels.PRItem{},
		attachments: map[string]dbmodels.Attachment{},
		approvals:   map[string]dbmodels.Approval{},
	}
}

func copyMap[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *memDB) snapshot() *memDB {
	return &memDB{
		prs:         copyMap(m.prs),
		items:       copyMap(m.items),
		attachments: copyMap(m.attachments),
		approvals:   copyMap(m.approvals),
		failSave:    m.failSave,

		failAttachmentSave: m.failAttachmentSave,
	}
}

func (m *memDB) restore(from *memDB) {
	m.prs, m.items, m.attachments, m.approvals = from.prs, from.items, from.attachments, from.approvals
}

// runner emulates a transaction: a failing fn leaves the rows as they were.
func (m *memDB) runner() TxRunner {
	mu := &sync.Mutex{}
	return func(fn func(s Stores) error) error {
		mu.Lock()
		defer mu.Unlock()
		before := m.snapshot()
		if err := fn(m.stores()); err != nil {
			m.restore(before)
			return err
		}
		return nil
	}
}

func (m *memDB) stores() Stores {
	return Stores{
		PR:          &fakePRStore{db: m},
		Items:       &fakeItemStore{db: m},
		Attachments: &fakeAttachmentStore{db: m},
		Approvals:   &fakeApprovalStore{db: m},
	}
}

func (m *memDB) aggregate(rec dbmodels.PurchaseRequest) dbmodels.PurchaseRequest {
	rec.Items, rec.Attachments, rec.Approvals = nil, nil, nil
	for _, item := range m.items {
		if item.PRID == rec.ID {
			rec.Items = append(rec.Items, item)
		}
	}
	for _, attachment := range m.attachments {
		if attachment.PRID == rec.ID {
			rec.Attachments = append(rec.Attachments, attachment)
		}
	}
	for _, approval := range m.approvals {
		if approval.PRID == rec.ID {
			rec.Approvals = append(rec.Approvals, approval)
		}
	}
	sort.Slice(rec.Items, func(a, b int) bool { return rec.Items[a].ItemNumber < rec.Items[b].ItemNumber })
	sort.Slice(rec.Attachments, func(a, b int) bool {
		if rec.Attachments[a].UploadDate.Equal(rec.Attachments[b].UploadDate) {
			return rec.Attachments[a].ID < rec.Attachments[b].ID
		}
		return rec.Attachments[a].UploadDate.Before(rec.Attachments[b].UploadDate)
	})
	sort.Slice(rec.Approvals, func(a, b int) bool { return rec.Approvals[a].Level < rec.Approvals[b].Level })
	rec.AuditLog = append(dbmodels.AuditLog{}, rec.AuditLog...)
	return rec
}

type fakePRStore struct {
	prstore.Provider
	db *memDB
}

func (f *fakePRStore) Create(rec dbmodels.PurchaseRequest) (string, error) {
	for _, existing := range f.db.prs {
		if existing.PRNumber == rec.PRNumber {
			return "", errors.Wrap(gorm.ErrDuplicatedKey, "pr_number")
		}
	}
	rec.Items, rec.Attachments, rec.Approvals = nil, nil, nil
	f.db.prs[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakePRStore) Save(rec dbmodels.PurchaseRequest) error {
	if f.db.failSave != nil {
		return f.db.failSave
	}
	existing, ok := f.db.prs[rec.ID]
	if !ok {
		return models.NotFoundErrorf("purchase request %s", rec.ID)
	}
	rec.AuditLog = existing.AuditLog
	rec.CreatedAt = existing.CreatedAt
	rec.Items, rec.Attachments, rec.Approvals = nil, nil, nil
	f.db.prs[rec.ID] = rec
	return nil
}

func (f *fakePRStore) AppendAudit(id string, entries []dbmodels.AuditEntry) error {
	rec, ok := f.db.prs[id]
	if !ok {
		return models.NotFoundErrorf("purchase request %s", id)
	}
	rec.AuditLog = append(append(dbmodels.AuditLog{}, rec.AuditLog...), entries...)
	f.db.prs[id] = rec
	return nil
}

func (f *fakePRStore) GetByID(id string) (*dbmodels.PurchaseRequest, error) {
	rec, ok := f.db.prs[id]
	if !ok {
		return nil, nil
	}
	rec = f.db.aggregate(rec)
	return &rec, nil
}

func (f *fakePRStore) GetForUpdate(id string) (*dbmodels.PurchaseRequest, error) {
	f.db.forUpdate = append(f.db.forUpdate, id)
	return f.GetByID(id)
}

func (f *fakePRStore) CountAll() (int64, error) {
	return int64(len(f.db.prs)), nil
}

func (f *fakePRStore) active() []dbmodels.PurchaseRequest {
	list := []dbmodels.PurchaseRequest{}
	for _, rec := range f.db.prs {
		if !rec.IsDeleted {
			list = append(list, f.db.aggregate(rec))
		}
	}
	sort.Slice(list, func(a, b int) bool { return list[a].PRNumber > list[b].PRNumber })
	return list
}

func (f *fakePRStore) ExportList(filter prapimodels.ExportFilter) ([]dbmodels.PurchaseRequest, error) {
	list := []dbmodels.PurchaseRequest{}
	for _, rec := range f.active() {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		list = append(list, rec)
	}
	return list, nil
}

func (f *fakePRStore) filtered(filter prapimodels.PRFilter) []dbmodels.PurchaseRequest {
	list := []dbmodels.PurchaseRequest{}
	for _, rec := range f.active() {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		list = append(list, rec)
	}
	return list
}

func (f *fakePRStore) ListCount(filter prapimodels.PRFilter) (int64, error) {
	return int64(len(f.filtered(filter))), nil
}

func (f *fakePRStore) List(filter prapimodels.PRFilter) ([]dbmodels.PurchaseRequest, error) {
	list := f.filtered(filter)
	page, limit := filter.GetPage()
	from := (page - 1) * limit
	if from > len(list) {
		from = len(list)
	}
	to := from + limit
	if to > len(list) {
		to = len(list)
	}
	return list[from:to], nil
}

type fakeItemStore struct {
	db *memDB
}

func (f *fakeItemStore) Save(rec dbmodels.PRItem) error {
	for id, existing := range f.db.items {
		if id != rec.ID && existing.PRID == rec.PRID && existing.ItemNumber == rec.ItemNumber {
			return errors.Wrap(gorm.ErrDuplicatedKey, "pr_id, item_number")
		}
	}
	f.db.items[rec.ID] = rec
	return nil
}

func (f *fakeItemStore) Delete(prID string, ids []string) error {
	for _, id := range ids {
		if f.db.items[id].PRID == prID {
			delete(f.db.items, id)
		}
	}
	return nil
}

func (f *fakeItemStore) ListByPR(prID string) ([]dbmodels.PRItem, error) {
	rec := f.db.aggregate(dbmodels.PurchaseRequest{BaseModel: dbmodels.BaseModel{ID: prID}})
	return rec.Items, nil
}

type fakeAttachmentStore struct {
	attachmentstore.Provider
	db *memDB
}

func (f *fakeAttachmentStore) Save(rec dbmodels.Attachment) error {
	if f.db.failAttachmentSave != nil {
		return f.db.failAttachmentSave
	}
	f.db.attachments[rec.ID] = rec
	return nil
}

func (f *fakeAttachmentStore) GetByID(prID, id string) (*dbmodels.Attachment, error) {
	rec, ok := f.db.attachments[id]
	if !ok || rec.PRID != prID {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeAttachmentStore) Stats(prID string) (dbmodels.AttachmentStats, error) {
	stats := dbmodels.AttachmentStats{}
	seen := map[models.AttachmentCategory]bool{}
	for _, rec := range f.db.attachments {
		if rec.PRID != prID || !rec.IsActive {
			continue
		}
		stats.TotalFiles++
		stats.TotalSize += rec.Size
		if !seen[rec.Category] {
			seen[rec.Category] = true
			stats.Categories = append(stats.Categories, rec.Category)
		}
	}
	return stats, nil
}

type fakeApprovalStore struct {
	approvalstore.Provider
	db *memDB
}

func (f *fakeApprovalStore) Save(rec dbmodels.Approval) error {
	for id, existing := range f.db.approvals {
		if id != rec.ID && existing.PRID == rec.PRID && existing.Level == rec.Level {
			return errors.Wrap(gorm.ErrDuplicatedKey, "pr_id, level")
		}
	}
	rec.PurchaseRequest = nil
	f.db.approvals[rec.ID] = rec
	return nil
}

func (f *fakeApprovalStore) Delete(prID string, ids []string) error {
	for _, id := range ids {
		if f.db.approvals[id].PRID == prID {
			delete(f.db.approvals, id)
		}
	}
	return nil
}

func (f *fakeApprovalStore) GetByLevel(prID string, level int) (*dbmodels.Approval, error) {
	for _, rec := range f.db.approvals {
		if rec.PRID == prID && rec.Level == level {
			return &rec, nil
		}
	}
	return nil, nil
}

// scriptedAllocator hands out the given numbers in order, then falls back to counting.
type scriptedAllocator struct {
	numbers []string
}

func (a *scriptedAllocator) Next(ctx context.Context, counter prnumber.Counter, now time.Time) (string, error) {
	if len(a.numbers) != 0 {
		number := a.numbers[0]
		a.numbers = a.numbers[1:]
		return number, nil
	}
	return prnumber.NewCountAllocator().Next(ctx, counter, now)
}

type fakeFiles struct {
	objects map[string][]byte
	// open counts readers handed out and not closed yet.
	open int
}

type countedReader struct {
	io.Reader
	files *fakeFiles
}

func (r *countedReader) Close() error {
	r.files.open--
	return nil
}

func (f *fakeFiles) Upload(ctx context.Context, prID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%d-%s", prID, len(f.objects)+1, strings.ToLower(fileName))
	f.objects[key] = body
	return key, nil
}

func (f *fakeFiles) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.Errorf("attachment object %s not found", key)
	}
	f.open++
	return &countedReader{Reader: bytes.NewReader(body), files: f}, nil
}

func (f *fakeFiles) Remove(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	sent []sentMail
}

func (f *fakeMailer) SendEMail(to, subject, message string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []dbmodels.AuditEntry
}

func (f *fakePublisher) Publish(ctx context.Context, prID, prNumber string, events []dbmodels.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakePublisher) Close() {}

type env struct {
	db        *memDB
	files     *fakeFiles
	mailer    *fakeMailer
	publisher *fakePublisher
	allocator *scriptedAllocator
	metrics   *metrics.Metrics
	handler   impl
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newEnv() *env {
	e := &env{
		db:        newMemDB(),
		files:     &fakeFiles{objects: map[string][]byte{}},
		mailer:    &fakeMailer{},
		publisher: &fakePublisher{},
		allocator: &scriptedAllocator{},
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}
	e.handler = impl{
		stores:    e.db.stores(),
		run:       e.db.runner(),
		allocator: e.allocator,
		files:     e.files,
		xls:       xlsexport.NewInstance(),
		mailer:    e.mailer,
		publisher: e.publisher,
		metrics:   e.metrics,
		lockWait:  200 * time.Millisecond,
		retries:   3,
		now:       func() time.Time { return testNow },
	}
	return e
}
