package prhandler

import (
	"github.com/pkg/errors"
	csvexport "procurement-backend/lib/export/csv"
	pdfexport "procurement-backend/lib/export/pdf"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

const (
	dashboardRecent  = 5
	dashboardPending = 10
)

func (i impl) GetByID(id string) (prapimodels.PRView, error) {
	state, err := i.load(i.stores, id)
	if err != nil {
		return prapimodels.PRView{}, err
	}
	return i.view(state), nil
}

func (i impl) List(filter prapimodels.PRFilter) (list []prapimodels.PRView, rowCount int64, err error) {
	if err = filter.Validate(); err != nil {
		return nil, 0, err
	}
	rowCount, err = i.stores.PR.ListCount(filter)
	if err != nil {
		return nil, 0, err
	}
	recs, err := i.stores.PR.List(filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error listing purchase requests")
	}
	return prapimodels.PRListConvertAll(recs, i.now()), rowCount, nil
}

func (i impl) Search(filter prapimodels.SearchFilter) (list []prapimodels.PRView, rowCount int64, err error) {
	if err = filter.Validate(); err != nil {
		return nil, 0, err
	}
	rowCount, err = i.stores.PR.SearchCount(filter)
	if err != nil {
		return nil, 0, err
	}
	recs, err := i.stores.PR.Search(filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error searching purchase requests")
	}
	return prapimodels.PRListConvertAll(recs, i.now()), rowCount, nil
}

func (i impl) Stats() (prapimodels.StatsView, error) {
	overview, err := i.stores.PR.StatsOverview()
	if err != nil {
		return prapimodels.StatsView{}, errors.Wrap(err, "error reading purchase request stats")
	}
	byDepartment, err := i.stores.PR.DepartmentStats()
	if err != nil {
		return prapimodels.StatsView{}, errors.Wrap(err, "error reading department stats")
	}
	return prapimodels.StatsView{
		Overview:     overview,
		ByDepartment: byDepartment,
	}, nil
}

func (i impl) Dashboard() (prapimodels.DashboardView, error) {
	counts, err := i.stores.PR.StatusCounts()
	if err != nil {
		return prapimodels.DashboardView{}, errors.Wrap(err, "error reading status counts")
	}
	recent, err := i.stores.PR.ListRecent(dashboardRecent)
	if err != nil {
		return prapimodels.DashboardView{}, errors.Wrap(err, "error reading recent purchase requests")
	}
	pending, err := i.stores.PR.ListWithPendingApprovals(dashboardPending)
	if err != nil {
		return prapimodels.DashboardView{}, errors.Wrap(err, "error reading pending approvals")
	}
	now := i.now()
	return prapimodels.DashboardView{
		StatusCounts:     counts,
		RecentPRs:        prapimodels.PRListConvertAll(recent, now),
		PendingApprovals: prapimodels.PRListConvertAll(pending, now),
	}, nil
}

func (i impl) exportList(filter prapimodels.ExportFilter) ([]dbmodels.PurchaseRequest, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	list, err := i.stores.PR.ExportList(filter)
	if err != nil {
		return nil, errors.Wrap(err, "error reading purchase requests for export")
	}
	return list, nil
}

func (i impl) ExportCSV(filter prapimodels.ExportFilter) ([]byte, error) {
	list, err := i.exportList(filter)
	if err != nil {
		return nil, err
	}
	return csvexport.ExportPRList(list), nil
}

func (i impl) ExportXLSX(filter prapimodels.ExportFilter) ([]byte, error) {
	list, err := i.exportList(filter)
	if err != nil {
		return nil, err
	}
	buf, err := i.xls.ExportPRList(list)
	if err != nil {
		return nil, errors.Wrap(err, "error building xlsx export")
	}
	return buf.Bytes(), nil
}

func (i impl) ExportPDF(id string) ([]byte, string, error) {
	state, err := i.load(i.stores, id)
	if err != nil {
		return nil, "", err
	}
	rec := state.Aggregate()
	data, err := pdfexport.GeneratePR(rec, i.now())
	if err != nil {
		return nil, "", errors.Wrap(err, "error building pdf document")
	}
	return data, pdfexport.FileName(rec), nil
}
