package banlist

import "time"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// LookupRequest carries the query of GET /api/banlist
type LookupRequest struct {
	TargetType string `json:"target_type" validate:"required,target_type"`
	TargetID   string `json:"target_id" validate:"required,min=5,max=20"`
}

// LookupResult answers whether a target is banned. Details are present only when banned.
type LookupResult struct {
	Banned bool `json:"banned"`
	*BanDetails
}

// BanDetails describes the first approved record of a banned target
type BanDetails struct {
	Count    int       `json:"count"`
	Reason   string    `json:"reason"`
	Evidence []string  `json:"evidence"`
	CreateAt time.Time `json:"create_at"`
	UpdateAt time.Time `json:"update_at"`
}

// PublicRecord is the public projection of an approved record
type PublicRecord struct {
	CreateAt   time.Time `json:"create_at"`
	UpdateAt   time.Time `json:"update_at"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason"`
	Evidence   []string  `json:"evidence"`
}

func PublicRecordFromEntity(r *ApprovedRecord) PublicRecord {
	evidence := []string(r.Evidence)
	if evidence == nil {
		evidence = []string{}
	}
	return PublicRecord{
		CreateAt:   r.CreateAt,
		UpdateAt:   r.UpdateAt,
		TargetType: r.TargetType,
		TargetID:   r.TargetID,
		Reason:     r.Reason.String,
		Evidence:   evidence,
	}
}

// Page is one page of the public banlist
type Page struct {
	Total   int            `json:"total"`
	Records []PublicRecord `json:"records"`
}

// Snapshot is the full public banlist at a point in time
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Total       int            `json:"total"`
	Records     []PublicRecord `json:"records"`
}
