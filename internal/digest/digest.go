// Package digest rolls document version history up into period digests.
package digest

import (
	"sort"

	"policytrack/internal/model"
)

// Aggregate collects every version created inside the period. Documents with no
// in-period version are left out. A document whose own creation falls inside the
// period is reported as new, otherwise as updated.
func Aggregate(p model.DigestPeriod, docs []model.Document) model.Digest {
	out := model.Digest{Period: p, Documents: []model.DigestEntry{}}

	for _, d := range docs {
		var changes []model.DigestChange
		for _, v := range d.Versions {
			if !p.Contains(v.CreatedAt) {
				continue
			}
			changes = append(changes, toChange(v))
		}
		if len(changes) == 0 {
			continue
		}
		sort.SliceStable(changes, func(i, j int) bool {
			return changes[i].CreatedAt.After(changes[j].CreatedAt)
		})

		entry := model.DigestEntry{
			DocumentID:   d.ID,
			DocumentName: d.Name,
			ShortCode:    d.ShortCode,
			IsNew:        p.Contains(d.CreatedAt),
			Changes:      changes,
		}
		if entry.IsNew {
			out.NewPolicies++
		} else {
			out.UpdatedPolicies++
		}
		out.TotalChanges += len(changes)
		out.Documents = append(out.Documents, entry)
	}

	// changes[0] is the newest in-period change of each entry
	sort.SliceStable(out.Documents, func(i, j int) bool {
		a, b := out.Documents[i], out.Documents[j]
		if !a.Changes[0].CreatedAt.Equal(b.Changes[0].CreatedAt) {
			return a.Changes[0].CreatedAt.After(b.Changes[0].CreatedAt)
		}
		return a.DocumentName < b.DocumentName
	})
	return out
}

func toChange(v model.Version) model.DigestChange {
	c := model.DigestChange{
		VersionID:  v.ID,
		CreatedAt:  v.CreatedAt,
		UploadedBy: v.UploadedBy,
		Notes:      v.Notes,
		Status:     v.Status,
	}
	if v.Comparison != nil {
		c.Summary = v.Comparison.Summary
	}
	return c
}
