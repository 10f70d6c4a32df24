package moderation

import "time"

// SubmitReportRequest is the body of POST /api/report
type SubmitReportRequest struct {
	TargetType string   `json:"target_type" validate:"required,target_type"`
	TargetID   string   `json:"target_id" validate:"required,min=5,max=20"`
	Reason     string   `json:"reason" validate:"required,min=5,max=500"`
	Evidence   []string `json:"evidence"`
	HWIC       string   `json:"hwic" validate:"required,min=10,max=128"`
}

// OperateRecordRequest is the body of approve_ban / reject_ban
type OperateRecordRequest struct {
	RecordID int64  `json:"record_id" validate:"required,gt=0"`
	Note     string `json:"note" validate:"max=1000"`
}

// ModifyRecordRequest is the body of modify_ban_record. Empty fields are left untouched.
type ModifyRecordRequest struct {
	RecordID int64    `json:"record_id" validate:"required,gt=0"`
	Reason   string   `json:"reason" validate:"max=500"`
	Evidence []string `json:"evidence"`
	Status   string   `json:"status" validate:"ban_status"`
	Note     string   `json:"note" validate:"max=1000"`
}

// Patch converts the request into a RecordPatch, skipping empty values.
func (r *ModifyRecordRequest) Patch() RecordPatch {
	var p RecordPatch
	if r.Reason != "" {
		p.Reason = &r.Reason
	}
	if len(r.Evidence) > 0 {
		p.Evidence = r.Evidence
	}
	if r.Status != "" {
		s := Status(r.Status)
		p.Status = &s
	}
	if r.Note != "" {
		p.Note = &r.Note
	}
	return p
}

// RecordFilter for query_ban_records
type RecordFilter struct {
	TargetType TargetType
	Status     Status
	Offset     int
	Limit      int
}

// SubmitReportResponse is returned after a successful submission
type SubmitReportResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// RecordResponse is the admin view of a ban record
type RecordResponse struct {
	ID         int64     `json:"id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason"`
	Evidence   []string  `json:"evidence"`
	HWIC       string    `json:"hwic"`
	IP         string    `json:"ip"`
	Status     string    `json:"status"`
	Note       string    `json:"note"`
	CreateAt   time.Time `json:"create_at"`
	UpdateAt   time.Time `json:"update_at"`
}

func RecordResponseFromEntity(r *BanRecord) *RecordResponse {
	evidence := []string(r.Evidence)
	if evidence == nil {
		evidence = []string{}
	}
	return &RecordResponse{
		ID:         r.ID,
		TargetType: string(r.TargetType),
		TargetID:   r.TargetID,
		Reason:     r.Reason.String,
		Evidence:   evidence,
		HWIC:       r.HWIC,
		IP:         r.IP.String,
		Status:     string(r.Status),
		Note:       r.Note.String,
		CreateAt:   r.CreateAt,
		UpdateAt:   r.UpdateAt,
	}
}

func RecordResponsesFromEntities(records []*BanRecord) []*RecordResponse {
	out := make([]*RecordResponse, len(records))
	for i, r := range records {
		out[i] = RecordResponseFromEntity(r)
	}
	return out
}

// DecisionResponse is returned by approve_ban / reject_ban
type DecisionResponse struct {
	Message string          `json:"message"`
	Record  *RecordResponse `json:"record"`
}

// ModifyResponse is returned by modify_ban_record
type ModifyResponse struct {
	Message string          `json:"message"`
	Updated []string        `json:"updated"`
	Record  *RecordResponse `json:"record"`
}

// Stats holds record counts by status
type Stats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}

// DayCount is one point of the trailing trend
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ValueCount is a grouped count row
type ValueCount struct {
	Value string `db:"value"`
	Count int    `db:"count"`
}

// HWICCount is a top reporter device
type HWICCount struct {
	HWIC  string `json:"hwic"`
	Count int    `json:"count"`
}

// IPCount is a top reporter address
type IPCount struct {
	IP    string `json:"ip"`
	Count int    `json:"count"`
}

// TypeCount is a per target type total
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// StatsDetail is the analytics view of ban_stats_detail
type StatsDetail struct {
	Trend []DayCount  `json:"trend"`
	HWIC  []HWICCount `json:"hwic"`
	IP    []IPCount   `json:"ip"`
	Type  []TypeCount `json:"type"`
}
