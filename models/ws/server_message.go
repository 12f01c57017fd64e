package wsmodels

type ServerMessage struct {
	Time        string `json:"time"` // event time, RFC 3339
	Code        string `json:"code"` // audit action
	PRID        string `json:"pr_id"`
	PRNumber    string `json:"pr_number"`
	PerformedBy string `json:"performed_by"`
	Msg         string `json:"msg"` // human readable details
}
