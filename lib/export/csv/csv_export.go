package csvexport

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	dbmodels "procurement-backend/models/db"
)

const FileName = "purchase_requests.csv"

const header = "PR Number,Title,Department,Requestor,Status,Priority,Estimated Budget,Currency,Created Date\n"

// ExportPRList renders one line per request. Every value is quoted and embedded quotes are doubled.
func ExportPRList(list []dbmodels.PurchaseRequest) []byte {
	buf := bytes.NewBufferString(header)
	for _, rec := range list {
		fields := []string{
			rec.PRNumber,
			rec.Title,
			string(rec.Department),
			rec.Requestor,
			string(rec.Status),
			string(rec.Priority),
			strconv.FormatFloat(rec.EstimatedBudget, 'f', -1, 64),
			string(rec.Currency),
			rec.CreatedAt.UTC().Format(time.DateOnly),
		}
		for idx, field := range fields {
			if idx > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(field))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
