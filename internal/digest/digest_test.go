package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policytrack/internal/model"
	"policytrack/internal/period"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

func week2(t *testing.T) model.DigestPeriod {
	t.Helper()
	p, err := period.Resolve(model.PeriodWeek, 2024, 2)
	require.NoError(t, err)
	return p
}

func TestAggregate(t *testing.T) {
	p := week2(t) // Jan 8 - 14, 2024

	docs := []model.Document{
		{
			ID: "doc-old", Name: "Dress Code", CreatedAt: at(1, 9),
			Versions: []model.Version{
				{ID: "o1", CreatedAt: at(1, 9), Status: model.StatusPublished},
				{ID: "o2", CreatedAt: at(9, 10), Status: model.StatusPublished, UploadedBy: "ana",
					Comparison: &model.Comparison{Summary: "Removed the beard clause."}},
				{ID: "o3", CreatedAt: at(12, 16), Status: model.StatusPending, Notes: "typo fix"},
			},
		},
		{
			ID: "doc-new", Name: "Remote Work", CreatedAt: at(10, 8),
			Versions: []model.Version{
				{ID: "n1", CreatedAt: at(10, 8), Status: model.StatusPublished},
			},
		},
		{
			ID: "doc-quiet", Name: "Travel", CreatedAt: at(2, 8),
			Versions: []model.Version{
				{ID: "q1", CreatedAt: at(2, 8), Status: model.StatusPublished},
				{ID: "q2", CreatedAt: at(15, 0), Status: model.StatusPublished},
			},
		},
	}

	got := Aggregate(p, docs)

	assert.Equal(t, p, got.Period)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, 1, got.NewPolicies)
	assert.Equal(t, 1, got.UpdatedPolicies)
	assert.Equal(t, 3, got.TotalChanges)
	assert.Equal(t, len(got.Documents), got.NewPolicies+got.UpdatedPolicies)

	first := got.Documents[0]
	assert.Equal(t, "doc-old", first.DocumentID)
	assert.False(t, first.IsNew)
	require.Len(t, first.Changes, 2)
	assert.Equal(t, "o3", first.Changes[0].VersionID)
	assert.Equal(t, model.StatusPending, first.Changes[0].Status)
	assert.Equal(t, "typo fix", first.Changes[0].Notes)
	assert.Equal(t, "o2", first.Changes[1].VersionID)
	assert.Equal(t, "Removed the beard clause.", first.Changes[1].Summary)
	assert.Equal(t, "ana", first.Changes[1].UploadedBy)

	second := got.Documents[1]
	assert.Equal(t, "doc-new", second.DocumentID)
	assert.True(t, second.IsNew)
	require.Len(t, second.Changes, 1)
}

func TestAggregate_BoundaryInstants(t *testing.T) {
	p := week2(t)
	docs := []model.Document{
		{ID: "start", Name: "A", CreatedAt: p.Start, Versions: []model.Version{{ID: "s", CreatedAt: p.Start}}},
		{ID: "end", Name: "B", CreatedAt: p.End, Versions: []model.Version{{ID: "e", CreatedAt: p.End}}},
		{ID: "after", Name: "C", CreatedAt: p.End.Add(time.Millisecond),
			Versions: []model.Version{{ID: "x", CreatedAt: p.End.Add(time.Millisecond)}}},
	}

	got := Aggregate(p, docs)

	require.Len(t, got.Documents, 2)
	assert.Equal(t, "end", got.Documents[0].DocumentID)
	assert.Equal(t, "start", got.Documents[1].DocumentID)
	assert.Equal(t, 2, got.NewPolicies)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(week2(t), nil)

	assert.NotNil(t, got.Documents)
	assert.Empty(t, got.Documents)
	assert.Zero(t, got.TotalChanges)
}

func TestAggregate_OutOfOrderUploads(t *testing.T) {
	p := week2(t)
	docs := []model.Document{{
		ID: "d", Name: "Leave", CreatedAt: at(1, 0),
		Versions: []model.Version{
			{ID: "late", CreatedAt: at(13, 0)},
			{ID: "early", CreatedAt: at(8, 0)},
			{ID: "mid", CreatedAt: at(11, 0)},
		},
	}}

	got := Aggregate(p, docs)

	require.Len(t, got.Documents, 1)
	ids := []string{}
	for _, c := range got.Documents[0].Changes {
		ids = append(ids, c.VersionID)
	}
	assert.Equal(t, []string{"late", "mid", "early"}, ids)
}
