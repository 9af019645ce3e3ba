package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/field"
	"github.com/formforge/formforge/model"
)

func makeList(ids ...string) field.List {
	l := field.List{}
	for _, id := range ids {
		l = l.Append(model.FieldDefinition{ID: id, Type: model.FieldText, Label: "Field " + id})
	}
	return l
}

func ids(l field.List) []string {
	out := make([]string, len(l))
	for i, f := range l {
		out[i] = f.ID
	}
	return out
}

func assertOrdersAreContiguous(t *testing.T, l field.List) {
	t.Helper()
	for i, f := range l {
		assert.Equal(t, i+1, f.Order, "order of %s", f.ID)
	}
}

func TestAppend(t *testing.T) {
	l := makeList("a", "b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, ids(l))
	assertOrdersAreContiguous(t, l)
}

func TestAppendGeneratesMissingID(t *testing.T) {
	l := field.List{}.Append(model.FieldDefinition{Type: model.FieldText})

	require.Len(t, l, 1)
	assert.NotEmpty(t, l[0].ID)
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	l := makeList("a", "b")
	l.Append(model.FieldDefinition{ID: "c", Type: model.FieldText})

	assert.Equal(t, []string{"a", "b"}, ids(l))
}

func TestRemove(t *testing.T) {
	l := makeList("a", "b", "c").Remove("b")

	assert.Equal(t, []string{"a", "c"}, ids(l))
	assertOrdersAreContiguous(t, l)
}

func TestRemoveMissingIDIsNoop(t *testing.T) {
	l := makeList("a", "b")

	assert.Equal(t, l, l.Remove("nope"))
}

func TestDuplicate(t *testing.T) {
	l := field.List{}.
		Append(model.FieldDefinition{
			ID:       "a",
			Type:     model.FieldSelect,
			Label:    "Pick one",
			Required: true,
			Options:  []string{"Yes", "No"},
		})
	dup := l.Duplicate("a")

	require.Len(t, dup, 2)
	clone := dup[1]
	assert.NotEqual(t, "a", clone.ID)
	assert.NotEmpty(t, clone.ID)
	assert.Equal(t, 2, clone.Order)
	assert.Equal(t, model.FieldSelect, clone.Type)
	assert.Equal(t, "Pick one", clone.Label)
	assert.True(t, clone.Required)
	assert.Equal(t, []string{"Yes", "No"}, clone.Options)
}

func TestDuplicateCopiesOptions(t *testing.T) {
	l := field.List{}.Append(model.FieldDefinition{
		ID:      "a",
		Type:    model.FieldRadio,
		Options: []string{"One", "Two"},
	})
	dup := l.Duplicate("a")

	dup[1].Options[0] = "Changed"
	assert.Equal(t, "One", dup[0].Options[0])
}

func TestDuplicateThenDeleteRestoresList(t *testing.T) {
	l := makeList("a", "b", "c")

	dup := l.Duplicate("b")
	require.Len(t, dup, 4)

	restored := dup.Remove(dup[3].ID)
	assert.Equal(t, l, restored)
}

func TestMoveBeforeForward(t *testing.T) {
	l := makeList("a", "b", "c", "d").MoveBefore("a", "c")

	// dragging forward lands past the target, as the drag gesture does
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(l))
	assertOrdersAreContiguous(t, l)
}

func TestMoveBeforeBackward(t *testing.T) {
	l := makeList("a", "b", "c", "d").MoveBefore("d", "b")

	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(l))
	assertOrdersAreContiguous(t, l)
}

func TestMoveBeforeSelfIsNoop(t *testing.T) {
	l := makeList("a", "b", "c")

	assert.Equal(t, l, l.MoveBefore("b", "b"))
}

func TestMoveBeforeMissingIDIsNoop(t *testing.T) {
	l := makeList("a", "b", "c")

	assert.Equal(t, l, l.MoveBefore("a", "nope"))
	assert.Equal(t, l, l.MoveBefore("nope", "a"))
}

func TestOrdersStayContiguousUnderMixedEdits(t *testing.T) {
	l := makeList("a", "b", "c", "d", "e")
	l = l.MoveBefore("e", "a")
	l = l.Remove("c")
	l = l.Duplicate("b")
	l = l.MoveBefore("a", "d")
	l = l.Remove("e")

	sum := 0
	for _, f := range l {
		sum += f.Order
	}
	n := len(l)
	assert.Equal(t, n*(n+1)/2, sum)
	assertOrdersAreContiguous(t, l)
}

func TestSortedIsStableAndIdempotent(t *testing.T) {
	l := field.List{
		{ID: "x", Order: 2},
		{ID: "y", Order: 1},
		{ID: "z", Order: 2},
		{ID: "w", Order: 1},
	}

	once := l.Sorted()
	assert.Equal(t, []string{"y", "w", "x", "z"}, ids(once))

	twice := once.Sorted()
	assert.Equal(t, once, twice)
}
