package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// universe 小宇宙 {1,2,3} 上的全部子集限制（含 Whole）
func universe() []SubsetRestriction[int] {
	elems := []int{1, 2, 3}
	out := []SubsetRestriction[int]{Whole[int]()}
	for mask := 0; mask < 1<<len(elems); mask++ {
		var picked []int
		for i, e := range elems {
			if mask&(1<<i) != 0 {
				picked = append(picked, e)
			}
		}
		out = append(out, Elems(picked...), ExceptElems(picked...))
	}
	return out
}

func describe(r SubsetRestriction[int]) string {
	switch r.Kind {
	case SubsetWhole:
		return "Whole"
	case SubsetThese:
		return fmt.Sprintf("These%v", r.Set)
	default:
		return fmt.Sprintf("Except%v", r.Set)
	}
}

// TestLatticeCmp_Cases 典型比较结果
func TestLatticeCmp_Cases(t *testing.T) {
	cases := []struct {
		name string
		a, b SubsetRestriction[int]
		want LatticeOrdering
	}{
		{"except empty equals whole", ExceptElems[int](), Whole[int](), LatticeEqual},
		{"these subset", Elems(1), Elems(1, 2), LatticeLess},
		{"these incomparable", Elems(1), Elems(2), LatticeIncomparable},
		{"except fewer is larger", ExceptElems(1), ExceptElems(1, 2), LatticeGreater},
		{"disjoint these below except", Elems(1), ExceptElems(2), LatticeLess},
		{"overlapping these except", Elems(1, 2), ExceptElems(2), LatticeIncomparable},
		{"except above disjoint these", ExceptElems(3), Elems(1, 2), LatticeGreater},
		{"these below whole", Elems(1, 2, 3), Whole[int](), LatticeLess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			got := tc.a.LatticeCmp(tc.b)

			// Assert
			assert.Equal(t, tc.want, got, "得到 %s", got)
		})
	}
}

// TestLatticeCmp_Antisymmetric 任意两值比较结果反向对称，自比较恒为 Equal
func TestLatticeCmp_Antisymmetric(t *testing.T) {
	// Arrange
	all := universe()

	for _, a := range all {
		// Assert
		require.Equal(t, LatticeEqual, a.LatticeCmp(a), describe(a))
		for _, b := range all {
			ab, ba := a.LatticeCmp(b), b.LatticeCmp(a)
			require.Equal(t, ab.Reverse(), ba, "%s vs %s", describe(a), describe(b))
			if ab == LatticeLess {
				require.True(t, a.Le(b))
				require.False(t, a.Ge(b))
			}
		}
	}
}

// TestUnion_WholeAbsorbs 任何值与 Whole 的并都是 Whole
func TestUnion_WholeAbsorbs(t *testing.T) {
	// Arrange
	elems := Elems(1, 2, 3)

	// Act
	left := elems.Union(Whole[int]())
	right := Whole[int]().Union(elems)

	// Assert
	assert.Equal(t, SubsetWhole, left.Kind)
	assert.Equal(t, SubsetWhole, right.Kind)
}

// TestUnion_CommutativeAndAssociative 并运算满足交换律与结合律，且成员关系等于逐元素或
func TestUnion_CommutativeAndAssociative(t *testing.T) {
	// Arrange
	all := universe()
	probes := []int{1, 2, 3, 4}

	for _, a := range all {
		for _, b := range all {
			// Act
			ab, ba := a.Union(b), b.Union(a)

			// Assert
			require.True(t, ab.Equal(ba), "%s ∪ %s", describe(a), describe(b))
			require.True(t, ab.Ge(a) && ab.Ge(b))
			for _, p := range probes {
				require.Equal(t, a.Contains(p) || b.Contains(p), ab.Contains(p))
			}
			for _, c := range all {
				left, right := ab.Union(c), a.Union(b.Union(c))
				require.True(t, left.Equal(right), "(%s ∪ %s) ∪ %s", describe(a), describe(b), describe(c))
			}
		}
	}
}

// TestIntersection_Membership 交集成员关系等于逐元素与
func TestIntersection_Membership(t *testing.T) {
	// Arrange
	all := universe()
	probes := []int{1, 2, 3, 4}

	for _, a := range all {
		for _, b := range all {
			// Act
			ab := a.Intersection(b)

			// Assert
			for _, p := range probes {
				require.Equal(t, a.Contains(p) && b.Contains(p), ab.Contains(p), "%s ∩ %s @%d", describe(a), describe(b), p)
			}
		}
	}
}

// TestSubsetRestriction_Complexity Whole 复杂度为 0，其余为集合大小
func TestSubsetRestriction_Complexity(t *testing.T) {
	assert.Equal(t, 0, Whole[int]().Complexity())
	assert.Equal(t, 2, Elems(1, 2).Complexity())
	assert.Equal(t, 1, ExceptElems(7).Complexity())
	assert.Equal(t, 0, ExceptElems[int]().Complexity())
}
