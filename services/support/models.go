package support

import "time"

type IssueType string

const (
	IssueAccess  IssueType = "access"
	IssueAccount IssueType = "account"
	IssueContent IssueType = "content"
	IssueOther   IssueType = "other"
)

func (t IssueType) Valid() bool {
	switch t {
	case IssueAccess, IssueAccount, IssueContent, IssueOther:
		return true
	}
	return false
}

// Ticket is a support request. UserID is nil for guests.
type Ticket struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      *string   `json:"user_id" gorm:"size:36;index"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Email       string    `json:"email" gorm:"size:255;not null"`
	IssueType   IssueType `json:"issue_type" gorm:"size:16;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Ticket) TableName() string {
	return "support_tickets"
}

func Models() []any {
	return []any{&Ticket{}}
}
