package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"procurement-backend/models"
)

type AuditAction string

const (
	AuditCreated           AuditAction = "Created"
	AuditUpdated           AuditAction = "Updated"
	AuditSubmitted         AuditAction = "Submitted"
	AuditApproved          AuditAction = "Approved"
	AuditRejected          AuditAction = "Rejected"
	AuditCancelled         AuditAction = "Cancelled"
	AuditAttachmentAdded   AuditAction = "Attachment Added"
	AuditAttachmentRemoved AuditAction = "Attachment Removed"
	AuditItemAdded         AuditAction = "Item Added"
	AuditItemUpdated       AuditAction = "Item Updated"
	AuditItemRemoved       AuditAction = "Item Removed"
	AuditDeleted           AuditAction = "Deleted"
)

// AuditPayload is the typed body of an audit entry, one struct per action.
type AuditPayload interface {
	Action() AuditAction
	Details() string
}

type AuditEntry struct {
	Action      AuditAction
	PerformedBy string
	Timestamp   time.Time
	Details     string
	Payload     AuditPayload
}

func NewAuditEntry(actor string, at time.Time, payload AuditPayload) AuditEntry {
	return AuditEntry{
		Action:      payload.Action(),
		PerformedBy: actor,
		Timestamp:   at,
		Details:     payload.Details(),
		Payload:     payload,
	}
}

type auditEntryJSON struct {
	Action      AuditAction     `json:"action"`
	PerformedBy string          `json:"performed_by"`
	Timestamp   time.Time       `json:"timestamp"`
	Details     string          `json:"details"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

func (e AuditEntry) MarshalJSON() ([]byte, error) {
	out := auditEntryJSON{
		Action:      e.Action,
		PerformedBy: e.PerformedBy,
		Timestamp:   e.Timestamp,
		Details:     e.Details,
	}
	if e.Payload != nil {
		body, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		out.Payload = body
	}
	return json.Marshal(out)
}

func (e *AuditEntry) UnmarshalJSON(data []byte) error {
	var in auditEntryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.Action = in.Action
	e.PerformedBy = in.PerformedBy
	e.Timestamp = in.Timestamp
	e.Details = in.Details
	e.Payload = nil
	payload := newAuditPayload(in.Action)
	if payload == nil {
		return errors.Errorf("unknown audit action: %v", in.Action)
	}
	if len(in.Payload) != 0 {
		if err := json.Unmarshal(in.Payload, payload); err != nil {
			return errors.Wrapf(err, "audit payload for %v", in.Action)
		}
	}
	e.Payload = derefPayload(payload)
	return nil
}

func newAuditPayload(action AuditAction) AuditPayload {
	switch action {
	case AuditCreated:
		return &CreatedPayload{}
	case AuditUpdated:
		return &UpdatedPayload{}
	case AuditSubmitted:
		return &SubmittedPayload{}
	case AuditApproved:
		return &ApprovalRecordedPayload{}
	case AuditRejected:
		return &RejectedPayload{}
	case AuditCancelled:
		return &CancelledPayload{}
	case AuditAttachmentAdded:
		return &AttachmentAddedPayload{}
	case AuditAttachmentRemoved:
		return &AttachmentRemovedPayload{}
	case AuditItemAdded:
		return &ItemAddedPayload{}
	case AuditItemUpdated:
		return &ItemUpdatedPayload{}
	case AuditItemRemoved:
		return &ItemRemovedPayload{}
	case AuditDeleted:
		return &DeletedPayload{}
	}
	return nil
}

// payloads are stored by value so type switches see the same types the commands emit
func derefPayload(p AuditPayload) AuditPayload {
	switch v := p.(type) {
	case *CreatedPayload:
		return *v
	case *UpdatedPayload:
		return *v
	case *SubmittedPayload:
		return *v
	case *ApprovalRecordedPayload:
		return *v
	case *RejectedPayload:
		return *v
	case *CancelledPayload:
		return *v
	case *AttachmentAddedPayload:
		return *v
	case *AttachmentRemovedPayload:
		return *v
	case *ItemAddedPayload:
		return *v
	case *ItemUpdatedPayload:
		return *v
	case *ItemRemovedPayload:
		return *v
	case *DeletedPayload:
		return *v
	}
	return p
}

type AuditLog []AuditEntry

func (j AuditLog) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *AuditLog) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*j = AuditLog{}
		return nil
	default:
		return errors.Errorf("unsupported audit log type %T", value)
	}
	return json.Unmarshal(data, j)
}

type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

func changedFields(changes []FieldChange) string {
	names := make([]string, 0, len(changes))
	for _, change := range changes {
		names = append(names, change.Field)
	}
	return strings.Join(names, ", ")
}

type CreatedPayload struct {
	PRNumber        string  `json:"pr_number"`
	ItemCount       int     `json:"item_count"`
	ApprovalLevels  int     `json:"approval_levels"`
	EstimatedBudget float64 `json:"estimated_budget"`
}

func (p CreatedPayload) Action() AuditAction { return AuditCreated }

func (p CreatedPayload) Details() string {
	return fmt.Sprintf("Purchase request %s created", p.PRNumber)
}

type UpdatedPayload struct {
	Changes             []FieldChange `json:"changes"`
	ItemsReplaced       bool          `json:"items_replaced"`
	AttachmentsReplaced bool          `json:"attachments_replaced"`
	ApprovalsReplaced   bool          `json:"approvals_replaced"`
}

func (p UpdatedPayload) Action() AuditAction { return AuditUpdated }

func (p UpdatedPayload) Details() string {
	parts := []string{}
	if len(p.Changes) != 0 {
		parts = append(parts, changedFields(p.Changes))
	}
	if p.ItemsReplaced {
		parts = append(parts, "items")
	}
	if p.AttachmentsReplaced {
		parts = append(parts, "attachments")
	}
	if p.ApprovalsReplaced {
		parts = append(parts, "approvals")
	}
	if len(parts) == 0 {
		return "Purchase request updated"
	}
	return "Purchase request updated: " + strings.Join(parts, ", ")
}

type SubmittedPayload struct {
	ItemCount       int     `json:"item_count"`
	EstimatedBudget float64 `json:"estimated_budget"`
}

func (p SubmittedPayload) Action() AuditAction { return AuditSubmitted }

func (p SubmittedPayload) Details() string {
	return "PR submitted for approval"
}

type ApprovalRecordedPayload struct {
	Level     int                      `json:"level"`
	LevelName models.ApprovalLevelName `json:"level_name"`
	Approver  string                   `json:"approver"`
	Comments  string                   `json:"comments,omitempty"`
	Completed bool                     `json:"completed"`
}

func (p ApprovalRecordedPayload) Action() AuditAction { return AuditApproved }

func (p ApprovalRecordedPayload) Details() string {
	msg := fmt.Sprintf("Approved at level %d", p.Level)
	if p.LevelName != "" {
		msg += fmt.Sprintf(" (%s)", p.LevelName)
	}
	if p.Comments != "" {
		msg += ": " + p.Comments
	}
	return msg
}

type RejectedPayload struct {
	Reason        string `json:"reason"`
	SkippedLevels []int  `json:"skipped_levels"`
}

func (p RejectedPayload) Action() AuditAction { return AuditRejected }

func (p RejectedPayload) Details() string {
	return "PR rejected: " + p.Reason
}

type CancelledPayload struct {
	Reason        string `json:"reason"`
	SkippedLevels []int  `json:"skipped_levels"`
}

func (p CancelledPayload) Action() AuditAction { return AuditCancelled }

func (p CancelledPayload) Details() string {
	if p.Reason == "" {
		return "PR cancelled"
	}
	return "PR cancelled: " + p.Reason
}

type ItemAddedPayload struct {
	ItemNumber  int     `json:"item_number"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

func (p ItemAddedPayload) Action() AuditAction { return AuditItemAdded }

func (p ItemAddedPayload) Details() string {
	return "Added item: " + p.Description
}

type ItemUpdatedPayload struct {
	ItemNumber  int           `json:"item_number"`
	Description string        `json:"description"`
	Changes     []FieldChange `json:"changes"`
}

func (p ItemUpdatedPayload) Action() AuditAction { return AuditItemUpdated }

func (p ItemUpdatedPayload) Details() string {
	if len(p.Changes) == 0 {
		return "Updated item: " + p.Description
	}
	return fmt.Sprintf("Updated item: %s (%s)", p.Description, changedFields(p.Changes))
}

type ItemRemovedPayload struct {
	ItemNumber  int    `json:"item_number"`
	Description string `json:"description"`
}

func (p ItemRemovedPayload) Action() AuditAction { return AuditItemRemoved }

func (p ItemRemovedPayload) Details() string {
	return "Removed item: " + p.Description
}

type AttachmentAddedPayload struct {
	AttachmentID string                    `json:"attachment_id"`
	OriginalName string                    `json:"original_name"`
	Category     models.AttachmentCategory `json:"category"`
	Size         int64                     `json:"size"`
}

func (p AttachmentAddedPayload) Action() AuditAction { return AuditAttachmentAdded }

func (p AttachmentAddedPayload) Details() string {
	return "Added attachment: " + p.OriginalName
}

type AttachmentRemovedPayload struct {
	AttachmentID string `json:"attachment_id"`
	OriginalName string `json:"original_name"`
}

func (p AttachmentRemovedPayload) Action() AuditAction { return AuditAttachmentRemoved }

func (p AttachmentRemovedPayload) Details() string {
	return "Removed attachment: " + p.OriginalName
}

type DeletedPayload struct{}

func (p DeletedPayload) Action() AuditAction { return AuditDeleted }

func (p DeletedPayload) Details() string {
	return "Purchase request deleted"
}
