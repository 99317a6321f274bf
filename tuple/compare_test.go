package tuple

import (
	"sort"
	"testing"
)

func tstr(s string) Tuple { return Tuple{String(s)} }

func pair(a, b string) Tuple { return Tuple{String(a), String(b)} }

func TestTupleSorting(t *testing.T) {
	items := []Tuple{
		pair("jonathan", "smith"),
		pair("chet", "corcos"),
		pair("jon", "smith"),
	}
	sort.Slice(items, func(i, j int) bool {
		return CompareTuple(items[i], items[j]) < 0
	})

	want := []Tuple{
		pair("chet", "corcos"),
		pair("jon", "smith"),
		pair("jonathan", "smith"),
	}
	for i := range want {
		if !items[i].Equal(want[i]) {
			t.Fatalf("sort: index %d: expected %v, have %v", i, want[i], items[i])
		}
	}
}

func TestCompareTypeOrder(t *testing.T) {
	ordered := []Value{
		Min,
		Null,
		Object(map[string]Value{"a": Number(1)}),
		Array(Number(1)),
		Number(1),
		String("x"),
		Bool(false),
		Max,
	}
	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered); j++ {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0:
				t.Fatalf("expected ordered[%d] < ordered[%d]", i, j)
			case i > j && got <= 0:
				t.Fatalf("expected ordered[%d] > ordered[%d]", i, j)
			case i == j && got != 0:
				t.Fatalf("expected ordered[%d] == ordered[%d]", i, j)
			}
		}
	}
}

func TestCompareSameType(t *testing.T) {
	if Compare(Number(1), Number(2)) >= 0 {
		t.Fatalf("expected 1 < 2")
	}
	if Compare(String("a"), String("b")) >= 0 {
		t.Fatalf("expected a < b")
	}
	if Compare(Bool(false), Bool(true)) >= 0 {
		t.Fatalf("expected false < true")
	}
	if Compare(Null, Null) != 0 {
		t.Fatalf("expected null == null")
	}
	if Compare(Array(Number(1)), Array(Number(1), Number(2))) >= 0 {
		t.Fatalf("expected shorter array prefix to sort first")
	}
}

func TestHasPrefix(t *testing.T) {
	t1 := Tuple{String("a"), String("b"), String("c")}
	if !HasPrefix(t1, Tuple{String("a"), String("b")}) {
		t.Fatalf("expected prefix match")
	}
	if HasPrefix(t1, Tuple{String("a"), String("x")}) {
		t.Fatalf("expected no prefix match")
	}
	if !HasPrefix(t1, Tuple{}) {
		t.Fatalf("expected empty tuple to be a prefix of everything")
	}
}

func TestTuplePrefixOrdering(t *testing.T) {
	short := Tuple{String("a")}
	long := Tuple{String("a"), String("b")}
	if CompareTuple(short, long) >= 0 {
		t.Fatalf("expected shorter prefix tuple to sort first")
	}
}
