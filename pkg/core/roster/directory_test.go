package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

func testMembers() []model.TeamMember {
	return []model.TeamMember{
		{ID: 3, Name: "Ashish", Priority: 3, Color: "green", IsActive: true, AccessKey: "ASHISH_KEY"},
		{ID: 1, Name: "Shrishti", Priority: 1, Color: "purple", IsActive: true, AccessKey: "SHRISHTI_KEY"},
		{ID: 4, Name: "Sahil", Priority: 4, Color: "yellow", IsActive: true, AccessKey: "SAHIL_KEY"},
		{ID: 2, Name: "Aakash", Priority: 2, Color: "blue", IsActive: true, AccessKey: "AAKASH_KEY"},
	}
}

func TestListMembers_SortedByPriority(t *testing.T) {
	dir := NewDirectory(testMembers())

	members := dir.ListMembers()
	require.Len(t, members, 4)

	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Shrishti", "Aakash", "Ashish", "Sahil"}, names)
}

func TestListMembers_EqualPriorityKeepsInputOrder(t *testing.T) {
	dir := NewDirectory([]model.TeamMember{
		{Name: "b", Priority: 1},
		{Name: "a", Priority: 1},
		{Name: "c", Priority: 0},
	})

	members := dir.ListMembers()
	assert.Equal(t, "c", members[0].Name)
	assert.Equal(t, "b", members[1].Name)
	assert.Equal(t, "a", members[2].Name)
}

func TestListMembers_ReturnsCopy(t *testing.T) {
	dir := NewDirectory(testMembers())

	members := dir.ListMembers()
	members[0].Name = "changed"

	assert.Equal(t, "Shrishti", dir.ListMembers()[0].Name)
}

func TestFindByName(t *testing.T) {
	dir := NewDirectory(testMembers())

	m, ok := dir.FindByName("Aakash")
	require.True(t, ok)
	assert.Equal(t, 2, m.Priority)

	_, ok = dir.FindByName("aakash")
	assert.False(t, ok, "names are case sensitive")
}

func TestFindByAccessKey(t *testing.T) {
	dir := NewDirectory(testMembers())

	tests := []struct {
		name     string
		key      string
		expected string
		found    bool
	}{
		{"exact match", "SAHIL_KEY", "Sahil", true},
		{"prefix does not match", "SAHIL", "", false},
		{"longer key does not match", "SAHIL_KEY_2", "", false},
		{"empty key", "", "", false},
		{"unknown key", "NOPE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := dir.FindByAccessKey(tt.key)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, m.Name)
		})
	}
}

func TestValidateAccessKey(t *testing.T) {
	dir := NewDirectory(testMembers())

	m, err := dir.ValidateAccessKey("AAKASH_KEY")
	require.NoError(t, err)
	assert.Equal(t, "Aakash", m.Name)

	m, err = dir.ValidateAccessKey("wrong")
	assert.ErrorIs(t, err, model.ErrInvalidAccessKey)
	assert.Nil(t, m)
}

func TestPriorities(t *testing.T) {
	dir := NewDirectory(testMembers())
	assert.Equal(t, map[string]int{"Shrishti": 1, "Aakash": 2, "Ashish": 3, "Sahil": 4}, dir.Priorities())
}
