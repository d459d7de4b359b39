package etl

import (
	"context"
	"strconv"

	"github.com/BartekS5/hubdb-sync/pkg/hubdb"
	"github.com/BartekS5/hubdb-sync/pkg/models"
)

// fakeTable is an in-memory HubDB draft/published table pair.
type fakeTable struct {
	nextID    int
	draft     []hubdb.Row
	published []hubdb.Row
	pageSize  int

	listCalls    int
	purgeCalls   int
	createSizes  []int
	publishCalls int

	// failCreateOn makes the n-th create call (1-based) fail.
	failCreateOn int
	failPublish  bool
	// ignorePurge simulates rows that survive a purge.
	ignorePurge bool
}

func newFakeTable(existing int) *fakeTable {
	f := &fakeTable{pageSize: hubdb.MaxListLimit}
	for i := 0; i < existing; i++ {
		f.add(map[string]interface{}{"stale": i})
	}
	return f
}

func (f *fakeTable) add(values map[string]interface{}) {
	f.nextID++
	f.draft = append(f.draft, hubdb.Row{ID: strconv.Itoa(f.nextID), Values: values})
}

func (f *fakeTable) ListRows(ctx context.Context, after string) (hubdb.RowPage, error) {
	f.listCalls++
	start := 0
	if after != "" {
		start, _ = strconv.Atoi(after)
	}
	end := min(start+f.pageSize, len(f.draft))
	page := hubdb.RowPage{Rows: append([]hubdb.Row(nil), f.draft[start:end]...)}
	if end < len(f.draft) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeTable) PurgeRows(ctx context.Context, ids []string) error {
	f.purgeCalls++
	if f.ignorePurge {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.draft[:0]
	for _, r := range f.draft {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	f.draft = kept
	return nil
}

func (f *fakeTable) CreateRows(ctx context.Context, rows []models.TargetRow) error {
	f.createSizes = append(f.createSizes, len(rows))
	if f.failCreateOn == len(f.createSizes) {
		return &hubdb.APIError{Method: "POST", Path: "/rows/draft/batch/create", StatusCode: 400, Body: `{"message":"invalid column"}`}
	}
	for _, r := range rows {
		f.add(r.Values)
	}
	return nil
}

func (f *fakeTable) Publish(ctx context.Context) error {
	f.publishCalls++
	if f.failPublish {
		return &hubdb.APIError{Method: "POST", Path: "/draft/publish", StatusCode: 500, Body: "internal"}
	}
	f.published = append([]hubdb.Row(nil), f.draft...)
	return nil
}

// draftValues returns the draft contents without ids.
func (f *fakeTable) draftValues() []map[string]interface{} {
	out := make([]map[string]interface{}, len(f.draft))
	for i, r := range f.draft {
		out[i] = r.Values
	}
	return out
}

type staticExtractor struct {
	rs  *models.ResultSet
	err error
}

func (s *staticExtractor) Extract(ctx context.Context) (*models.ResultSet, error) {
	return s.rs, s.err
}
