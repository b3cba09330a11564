package roster

import (
	"crypto/subtle"
	"sort"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// Directory is the read-only list of team members. It is built once at
// start-up and never changes afterwards.
type Directory struct {
	members []model.TeamMember
}

// NewDirectory creates a directory from the given members, ordered by
// priority. Members sharing a priority keep their original order.
func NewDirectory(members []model.TeamMember) *Directory {
	sorted := make([]model.TeamMember, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &Directory{members: sorted}
}

// ListMembers returns all members sorted ascending by priority
func (d *Directory) ListMembers() []model.TeamMember {
	out := make([]model.TeamMember, len(d.members))
	copy(out, d.members)
	return out
}

// FindByName returns the member with the given name
func (d *Directory) FindByName(name string) (model.TeamMember, bool) {
	for _, m := range d.members {
		if m.Name == name {
			return m, true
		}
	}
	return model.TeamMember{}, false
}

// FindByAccessKey returns the member holding exactly the given key
func (d *Directory) FindByAccessKey(key string) (model.TeamMember, bool) {
	if key == "" {
		return model.TeamMember{}, false
	}
	for _, m := range d.members {
		if m.AccessKey == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(m.AccessKey), []byte(key)) == 1 {
			return m, true
		}
	}
	return model.TeamMember{}, false
}

// ValidateAccessKey resolves a presented credential to exactly one member
func (d *Directory) ValidateAccessKey(key string) (*model.TeamMember, error) {
	m, ok := d.FindByAccessKey(key)
	if !ok {
		return nil, model.ErrInvalidAccessKey
	}
	return &m, nil
}

// Priorities returns a lookup of member name to priority
func (d *Directory) Priorities() map[string]int {
	out := make(map[string]int, len(d.members))
	for _, m := range d.members {
		out[m.Name] = m.Priority
	}
	return out
}
