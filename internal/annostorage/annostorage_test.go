package annostorage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"corpusgraph/internal/types"
)

func lessNodeID(a, b types.NodeID) bool { return a < b }

func TestInsertGetRemove(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	key := types.AnnoKey{NS: "annis", Name: "tok"}

	s.Insert(1, key, "the")
	v, ok := s.GetValueForItem(1, key)
	require.True(t, ok)
	require.Equal(t, "the", v)
	require.Equal(t, 1, s.NumberOfAnnotations())

	// overwrite
	s.Insert(1, key, "cat")
	v, ok = s.GetValueForItem(1, key)
	require.True(t, ok)
	require.Equal(t, "cat", v)
	require.Equal(t, 1, s.NumberOfAnnotations(), "overwrite must not change the count")

	old, ok := s.Remove(1, key)
	require.True(t, ok)
	require.Equal(t, "cat", old)
	_, ok = s.GetValueForItem(1, key)
	require.False(t, ok)
	require.Equal(t, 0, s.NumberOfAnnotations())
}

func TestExactAnnoSearch(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	key := types.AnnoKey{NS: "annis", Name: "tok"}
	s.Insert(1, key, "the")
	s.Insert(2, key, "cat")
	s.Insert(3, key, "the")

	ns := "annis"
	it := s.ExactAnnoSearch(&ns, "tok", types.SomeValue("the"))
	var got []types.NodeID
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, m.Item)
	}
	require.ElementsMatch(t, []types.NodeID{1, 3}, got)

	itAny := s.ExactAnnoSearch(&ns, "tok", types.AnyValue())
	count := 0
	for {
		_, ok := itAny.Next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 3, count)

	itNot := s.ExactAnnoSearch(&ns, "tok", types.NotSomeValue("the"))
	var gotNot []types.NodeID
	for {
		m, ok := itNot.Next()
		if !ok {
			break
		}
		gotNot = append(gotNot, m.Item)
	}
	require.ElementsMatch(t, []types.NodeID{2}, gotNot)
}

func TestRegexAnnoSearch(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	key := types.AnnoKey{NS: "annis", Name: "tok"}
	s.Insert(1, key, "cat")
	s.Insert(2, key, "cats")
	s.Insert(3, key, "dog")

	ns := "annis"
	it, err := s.RegexAnnoSearch(&ns, "tok", "cat.*", false)
	require.NoError(t, err)
	var got []types.NodeID
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, m.Item)
	}
	require.ElementsMatch(t, []types.NodeID{1, 2}, got)

	_, err = s.RegexAnnoSearch(&ns, "tok", "(", false)
	require.Error(t, err)
}

func TestGuessMaxCount(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	key := types.AnnoKey{NS: "annis", Name: "tok"}
	s.Insert(1, key, "apple")
	s.Insert(2, key, "banana")
	s.Insert(3, key, "cherry")

	ns := "annis"
	n := s.GuessMaxCount(&ns, "tok", "a", "b")
	require.Equal(t, 2, n) // apple, banana
}

func TestGetLargestItem(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	key := types.AnnoKey{NS: "annis", Name: "tok"}
	s.Insert(5, key, "x")
	s.Insert(2, key, "y")
	s.Insert(9, key, "z")

	largest, ok := s.GetLargestItem()
	require.True(t, ok)
	require.Equal(t, types.NodeID(9), largest)
}

func TestNamespaceOmittedUnionsAcrossNamespaces(t *testing.T) {
	s := NewStore[types.NodeID](lessNodeID)
	s.Insert(1, types.AnnoKey{NS: "a", Name: "x"}, "v1")
	s.Insert(2, types.AnnoKey{NS: "b", Name: "x"}, "v1")

	it := s.ExactAnnoSearch(nil, "x", types.SomeValue("v1"))
	var got []types.NodeID
	for {
		m, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, m.Item)
	}
	require.ElementsMatch(t, []types.NodeID{1, 2}, got)
}
