package dag

import (
	"errors"
	"strconv"
	"testing"

	"github.com/jmalbrecht/histvet/pkg/commit"
)

func TestIsAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		decls []commit.Declaration
		want  bool
	}{
		{
			name:  "EmptyHistory",
			decls: nil,
			want:  true,
		},
		{
			name: "SingleRoot",
			decls: []commit.Declaration{
				{ID: "root"},
			},
			want: true,
		},
		{
			name: "SelfLoop",
			decls: []commit.Declaration{
				{ID: "a", Parents: []string{"a"}},
			},
			want: false,
		},
		{
			name: "LinearChain",
			decls: []commit.Declaration{
				{ID: "root"},
				{ID: "a", Parents: []string{"root"}},
				{ID: "b", Parents: []string{"a"}},
				{ID: "c", Parents: []string{"b"}},
			},
			want: true,
		},
		{
			name: "MergeCommit",
			decls: []commit.Declaration{
				{ID: "root"},
				{ID: "left", Parents: []string{"root"}},
				{ID: "right", Parents: []string{"root"}},
				{ID: "merge", Parents: []string{"left", "right"}},
			},
			want: true,
		},
		{
			name: "TwoCycle",
			decls: []commit.Declaration{
				{ID: "a", Parents: []string{"b"}},
				{ID: "b", Parents: []string{"a"}},
			},
			want: false,
		},
		{
			name: "LongCycleWithTail",
			decls: []commit.Declaration{
				{ID: "a", Parents: []string{"b"}},
				{ID: "b", Parents: []string{"c"}},
				{ID: "c", Parents: []string{"a"}},
				{ID: "tail", Parents: []string{"a"}},
			},
			want: false,
		},
		{
			name: "CycleBesideAcyclicComponent",
			decls: []commit.Declaration{
				{ID: "root"},
				{ID: "ok", Parents: []string{"root"}},
				{ID: "x", Parents: []string{"y"}},
				{ID: "y", Parents: []string{"x"}},
			},
			want: false,
		},
		{
			name: "OverrideRemovesCycle",
			decls: []commit.Declaration{
				{ID: "a", Parents: []string{"b"}},
				{ID: "b", Parents: []string{"a"}},
				{ID: "b", Parents: nil},
			},
			want: true,
		},
		{
			name: "OverrideCreatesCycle",
			decls: []commit.Declaration{
				{ID: "root"},
				{ID: "a", Parents: []string{"root"}},
				{ID: "b", Parents: []string{"a"}},
				{ID: "a", Parents: []string{"b"}},
			},
			want: false,
		},
		{
			name: "DuplicateParentEntries",
			decls: []commit.Declaration{
				{ID: "root"},
				{ID: "a", Parents: []string{"root", "root"}},
			},
			want: true,
		},
		{
			name: "DanglingParentIsImplicitRoot",
			decls: []commit.Declaration{
				{ID: "a", Parents: []string{"ghost"}},
				{ID: "b", Parents: []string{"a"}},
			},
			want: true,
		},
		{
			name: "DiamondWithSharedAncestor",
			decls: []commit.Declaration{
				{ID: "d", Parents: []string{"b", "c"}},
				{ID: "b", Parents: []string{"a"}},
				{ID: "c", Parents: []string{"a"}},
				{ID: "a"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAcyclic(tt.decls); got != tt.want {
				t.Errorf("IsAcyclic() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The verdict must not depend on the order declarations arrive in, only on
// the effective parent lists after override resolution.
func TestVerdictOrderIndependence(t *testing.T) {
	decls := []commit.Declaration{
		{ID: "root"},
		{ID: "a", Parents: []string{"root"}},
		{ID: "b", Parents: []string{"a", "root"}},
		{ID: "c", Parents: []string{"b"}},
	}

	permute := func(order []int) []commit.Declaration {
		out := make([]commit.Declaration, len(order))
		for i, j := range order {
			out[i] = decls[j]
		}
		return out
	}

	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	for _, order := range orders {
		if !IsAcyclic(permute(order)) {
			t.Errorf("IsAcyclic() = false for declaration order %v, want true", order)
		}
	}
}

func TestVerdictDeterminism(t *testing.T) {
	decls := []commit.Declaration{
		{ID: "a", Parents: []string{"b"}},
		{ID: "b", Parents: []string{"c"}},
		{ID: "c", Parents: []string{"a"}},
	}
	for i := 0; i < 100; i++ {
		if IsAcyclic(decls) {
			t.Fatalf("IsAcyclic() = true on run %d, want false every run", i)
		}
	}
}

func TestCheckStrictPolicy(t *testing.T) {
	decls := []commit.Declaration{
		{ID: "a", Parents: []string{"ghost"}},
	}

	ok, err := Check(decls, PolicyImplicit)
	if err != nil {
		t.Fatalf("Check(implicit) error = %v, want nil", err)
	}
	if !ok {
		t.Error("Check(implicit) = false, want true")
	}

	_, err = Check(decls, PolicyStrict)
	var dangling *DanglingParentError
	if !errors.As(err, &dangling) {
		t.Fatalf("Check(strict) error = %v, want *DanglingParentError", err)
	}
	if dangling.Child != "a" || dangling.Parent != "ghost" {
		t.Errorf("DanglingParentError = {%q, %q}, want {%q, %q}",
			dangling.Child, dangling.Parent, "a", "ghost")
	}
}

func TestCheckStrictAcceptsCompleteHistory(t *testing.T) {
	decls := []commit.Declaration{
		{ID: "root"},
		{ID: "a", Parents: []string{"root"}},
	}
	ok, err := Check(decls, PolicyStrict)
	if err != nil {
		t.Fatalf("Check(strict) error = %v, want nil", err)
	}
	if !ok {
		t.Error("Check(strict) = false, want true")
	}
}

// Override resolution happens before the dangling check: a parent reference
// that only a superseded declaration carried must not fail strict mode.
func TestCheckStrictIgnoresSupersededParents(t *testing.T) {
	decls := []commit.Declaration{
		{ID: "root"},
		{ID: "a", Parents: []string{"ghost"}},
		{ID: "a", Parents: []string{"root"}},
	}
	ok, err := Check(decls, PolicyStrict)
	if err != nil {
		t.Fatalf("Check(strict) error = %v, want nil", err)
	}
	if !ok {
		t.Error("Check(strict) = false, want true")
	}
}

func TestAcyclicLargeChain(t *testing.T) {
	const n = 100000
	decls := make([]commit.Declaration, n)
	decls[0] = commit.Declaration{ID: "c0"}
	for i := 1; i < n; i++ {
		decls[i] = commit.Declaration{
			ID:      "c" + strconv.Itoa(i),
			Parents: []string{"c" + strconv.Itoa(i-1)},
		}
	}
	if !IsAcyclic(decls) {
		t.Error("IsAcyclic() = false for deep linear chain, want true")
	}
}
