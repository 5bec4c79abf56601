package domain

import (
	"context"
	"time"

	"github.com/compozy/modhost/engine/core"
	"github.com/compozy/modhost/engine/data/query"
)

type Platform int

const (
	PlatformWeb Platform = iota
	PlatformAndroid
	PlatformIOS
	PlatformDesktop
)

// AuditInfo records one audited action call.
type AuditInfo struct {
	ID                core.ID   `db:"id"                 json:"id"`
	AccountID         core.ID   `db:"account_id"         json:"account_id"`
	Area              string    `db:"area"               json:"area"`
	Controller        string    `db:"controller"         json:"controller"`
	Action            string    `db:"action"             json:"action"`
	Parameters        string    `db:"parameters"         json:"parameters"`
	Result            string    `db:"result"             json:"result"`
	Platform          Platform  `db:"platform"           json:"platform"`
	IP                string    `db:"ip"                 json:"ip"`
	BrowserInfo       string    `db:"browser_info"       json:"browser_info"`
	ExecutionTime     time.Time `db:"execution_time"     json:"execution_time"`
	ExecutionDuration int64     `db:"execution_duration" json:"execution_duration"`
}

func (AuditInfo) TableName() string { return "audit_info" }

// AuditInfoView is an audit entry with the account name.
type AuditInfoView struct {
	AuditInfo
	AccountName *string `db:"account_name" json:"account_name"`
}

// AuditInfoQuery filters audit entries. Zero fields are ignored; the time
// bounds are inclusive.
type AuditInfoQuery struct {
	Paging     query.Paging
	AccountID  core.ID
	Area       string
	Controller string
	Action     string
	Start      *time.Time
	End        *time.Time
}

type AuditInfoRepository interface {
	Add(ctx context.Context, a *AuditInfo) error
	Query(ctx context.Context, q AuditInfoQuery) (query.Page[AuditInfoView], error)
	// Details returns one entry with the account name.
	Details(ctx context.Context, id core.ID) (*AuditInfoView, error)
}
