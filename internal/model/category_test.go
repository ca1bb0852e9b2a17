package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "exact", input: "food", want: CategoryFood},
		{name: "mixed case", input: "Transport", want: CategoryTransport},
		{name: "padded", input: "  utilities ", want: CategoryUtilities},
		{name: "other stays other", input: "other", want: CategoryOther},
		{name: "unknown collapses", input: "groceries", want: CategoryOther},
		{name: "empty collapses", input: "", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.input))
		})
	}
}

func TestCategories_ClosedSet(t *testing.T) {
	assert.Len(t, Categories, 7)
	for _, c := range Categories {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Category("travel").IsValid())
}

func TestCategoryScores_Best(t *testing.T) {
	tests := []struct {
		name   string
		scores CategoryScores
		want   Category
		ok     bool
	}{
		{name: "empty", scores: nil, ok: false},
		{
			name: "single max",
			scores: CategoryScores{
				{Category: CategoryFood, Score: 1},
				{Category: CategoryShopping, Score: 2.5},
			},
			want: CategoryShopping,
			ok:   true,
		},
		{
			name: "tie keeps pack order",
			scores: CategoryScores{
				{Category: CategoryTransport, Score: 1.5},
				{Category: CategoryFood, Score: 1.5},
			},
			want: CategoryTransport,
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := tt.scores.Best()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, best.Category)
			}
		})
	}
}

func TestCategoryScores_TopN(t *testing.T) {
	scores := CategoryScores{
		{Category: CategoryFood, Score: 1},
		{Category: CategoryTransport, Score: 3},
		{Category: CategoryShopping, Score: 1},
		{Category: CategoryHealthcare, Score: 2},
	}

	top := scores.TopN(3)
	assert.Equal(t, CategoryScores{
		{Category: CategoryTransport, Score: 3},
		{Category: CategoryHealthcare, Score: 2},
		{Category: CategoryFood, Score: 1},
	}, top)

	assert.Empty(t, scores.TopN(0))
	assert.Len(t, scores.TopN(10), 4)
	assert.Equal(t, CategoryFood, scores[0].Category, "TopN must not reorder the receiver")
}

func TestCategoryScores_Validate(t *testing.T) {
	assert.NoError(t, CategoryScores{{Category: CategoryFood, Score: 1}}.Validate())
	assert.Error(t, CategoryScores{{Category: CategoryFood, Score: -1}}.Validate())
	assert.Error(t, CategoryScores{{Category: CategoryFood}, {Category: CategoryFood}}.Validate())
	assert.Error(t, CategoryScores{{Score: 1}}.Validate())
}
