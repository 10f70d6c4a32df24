package moderation

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memRepo struct {
	mu      sync.Mutex
	records map[int64]*BanRecord
	actions []*AdminAction
	nextID  int64
	clock   func() time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{records: map[int64]*BanRecord{}, clock: time.Now}
}

func (m *memRepo) Create(_ context.Context, record *BanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := m.clock()
	record.ID = m.nextID
	record.CreateAt, record.UpdateAt = now, now
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*BanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) Decide(_ context.Context, id int64, status Status, note string, action *AdminAction) (*BanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if r.Status != StatusPending {
		return nil, ErrAlreadyProcessed
	}
	r.Status = status
	r.Note.String, r.Note.Valid = note, note != ""
	r.UpdateAt = m.clock()
	m.appendAction(action)
	cp := *r
	return &cp, nil
}

func (m *memRepo) Modify(_ context.Context, id int64, patch RecordPatch, action *AdminAction) (*BanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	if patch.Reason != nil {
		r.Reason.String, r.Reason.Valid = *patch.Reason, true
	}
	if patch.Evidence != nil {
		r.Evidence = append([]string(nil), patch.Evidence...)
	}
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if patch.Note != nil {
		r.Note.String, r.Note.Valid = *patch.Note, true
	}
	r.UpdateAt = m.clock()
	m.appendAction(action)
	cp := *r
	return &cp, nil
}

func (m *memRepo) appendAction(a *AdminAction) {
	a.ID = int64(len(m.actions) + 1)
	a.Timestamp = m.clock()
	cp := *a
	m.actions = append(m.actions, &cp)
}

func (m *memRepo) sorted() []*BanRecord {
	out := make([]*BanRecord, 0, len(m.records))
	for _, r := range m.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdateAt.Equal(out[j].UpdateAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdateAt.After(out[j].UpdateAt)
	})
	return out
}

func (m *memRepo) List(_ context.Context, f RecordFilter) ([]*BanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*BanRecord
	for _, r := range m.sorted() {
		if f.TargetType != "" && r.TargetType != f.TargetType {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memRepo) CountByStatus(context.Context) (map[Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[Status]int{}
	for _, r := range m.records {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *memRepo) CountByDay(_ context.Context, since time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, r := range m.records {
		if r.UpdateAt.Before(since) {
			continue
		}
		counts[r.UpdateAt.UTC().Format("2006-01-02")]++
	}
	return counts, nil
}

func (m *memRepo) TopValues(_ context.Context, column string, limit int) ([]ValueCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, r := range m.records {
		switch column {
		case "hwic":
			counts[r.HWIC]++
		case "ip":
			counts[r.IP.String]++
		case "target_type":
			counts[string(r.TargetType)]++
		}
	}
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type staticBlocks map[string]bool

func (s staticBlocks) IsBlocked(_ context.Context, hwic string) (bool, error) {
	return s[hwic], nil
}
