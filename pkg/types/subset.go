package types

// ============================================================================
//                         子集限制（SubsetRestriction）
// ============================================================================
//
// 🎯 用于表达“全部 / 仅这些 / 除这些之外”三类权限范围，
// 资产、投资组合、外部调用权限都是它的实例。
//
// 在偏序意义下比较：Except({}) 与 Whole 等价；These 之间按集合包含比较；
// These 与 Except 之间按交集是否为空比较。权限判定（Ge）依赖这个归一化规则。

// LatticeOrdering 偏序比较结果
type LatticeOrdering int

const (
	LatticeLess LatticeOrdering = iota - 1
	LatticeEqual
	LatticeGreater
	LatticeIncomparable
)

// String 名称
func (o LatticeOrdering) String() string {
	switch o {
	case LatticeLess:
		return "Less"
	case LatticeEqual:
		return "Equal"
	case LatticeGreater:
		return "Greater"
	default:
		return "Incomparable"
	}
}

// Reverse 交换比较方向
func (o LatticeOrdering) Reverse() LatticeOrdering {
	switch o {
	case LatticeLess:
		return LatticeGreater
	case LatticeGreater:
		return LatticeLess
	default:
		return o
	}
}

// SubsetKind 子集限制的变体
type SubsetKind uint8

const (
	SubsetWhole SubsetKind = iota
	SubsetThese
	SubsetExcept
)

// Set 无序集合
type Set[A comparable] map[A]struct{}

// NewSet 构造集合
func NewSet[A comparable](items ...A) Set[A] {
	s := make(Set[A], len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Has 是否包含
func (s Set[A]) Has(a A) bool {
	_, ok := s[a]
	return ok
}

// isSubsetOf s ⊆ o
func (s Set[A]) isSubsetOf(o Set[A]) bool {
	if len(s) > len(o) {
		return false
	}
	for a := range s {
		if !o.Has(a) {
			return false
		}
	}
	return true
}

// isDisjoint s ∩ o = ∅
func (s Set[A]) isDisjoint(o Set[A]) bool {
	small, large := s, o
	if len(small) > len(large) {
		small, large = large, small
	}
	for a := range small {
		if large.Has(a) {
			return false
		}
	}
	return true
}

func (s Set[A]) union(o Set[A]) Set[A] {
	out := make(Set[A], len(s)+len(o))
	for a := range s {
		out[a] = struct{}{}
	}
	for a := range o {
		out[a] = struct{}{}
	}
	return out
}

func (s Set[A]) intersection(o Set[A]) Set[A] {
	out := make(Set[A])
	for a := range s {
		if o.Has(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

func (s Set[A]) difference(o Set[A]) Set[A] {
	out := make(Set[A])
	for a := range s {
		if !o.Has(a) {
			out[a] = struct{}{}
		}
	}
	return out
}

// latticeCmp 集合包含序
func (s Set[A]) latticeCmp(o Set[A]) LatticeOrdering {
	sub, sup := s.isSubsetOf(o), o.isSubsetOf(s)
	switch {
	case sub && sup:
		return LatticeEqual
	case sub:
		return LatticeLess
	case sup:
		return LatticeGreater
	default:
		return LatticeIncomparable
	}
}

// SubsetRestriction 子集限制
type SubsetRestriction[A comparable] struct {
	Kind SubsetKind `json:"kind"`
	Set  Set[A]     `json:"set,omitempty"`
}

// Whole 不受限
func Whole[A comparable]() SubsetRestriction[A] {
	return SubsetRestriction[A]{Kind: SubsetWhole}
}

// Elems 仅允许给定元素
func Elems[A comparable](items ...A) SubsetRestriction[A] {
	return SubsetRestriction[A]{Kind: SubsetThese, Set: NewSet(items...)}
}

// ExceptElems 允许给定元素之外的全部
func ExceptElems[A comparable](items ...A) SubsetRestriction[A] {
	return SubsetRestriction[A]{Kind: SubsetExcept, Set: NewSet(items...)}
}

// isWhole Whole 或 Except({})
func (r SubsetRestriction[A]) isWhole() bool {
	return r.Kind == SubsetWhole || (r.Kind == SubsetExcept && len(r.Set) == 0)
}

// LatticeCmp 偏序比较
func (r SubsetRestriction[A]) LatticeCmp(o SubsetRestriction[A]) LatticeOrdering {
	switch {
	case r.isWhole() && o.isWhole():
		return LatticeEqual
	case r.isWhole():
		return LatticeGreater
	case o.isWhole():
		return LatticeLess
	}

	switch {
	case r.Kind == SubsetThese && o.Kind == SubsetThese:
		return r.Set.latticeCmp(o.Set)
	case r.Kind == SubsetExcept && o.Kind == SubsetExcept:
		// 排除得越少范围越大
		return o.Set.latticeCmp(r.Set)
	case r.Kind == SubsetThese && o.Kind == SubsetExcept:
		if r.Set.isDisjoint(o.Set) {
			return LatticeLess
		}
		return LatticeIncomparable
	default: // Except vs These
		if r.Set.isDisjoint(o.Set) {
			return LatticeGreater
		}
		return LatticeIncomparable
	}
}

// Ge r ⊇ o
func (r SubsetRestriction[A]) Ge(o SubsetRestriction[A]) bool {
	cmp := r.LatticeCmp(o)
	return cmp == LatticeGreater || cmp == LatticeEqual
}

// Le r ⊆ o
func (r SubsetRestriction[A]) Le(o SubsetRestriction[A]) bool {
	return o.Ge(r)
}

// Equal 偏序意义下相等
func (r SubsetRestriction[A]) Equal(o SubsetRestriction[A]) bool {
	return r.LatticeCmp(o) == LatticeEqual
}

// Union 并
func (r SubsetRestriction[A]) Union(o SubsetRestriction[A]) SubsetRestriction[A] {
	switch {
	case r.Kind == SubsetWhole || o.Kind == SubsetWhole:
		return Whole[A]()
	case r.Kind == SubsetThese && o.Kind == SubsetThese:
		return SubsetRestriction[A]{Kind: SubsetThese, Set: r.Set.union(o.Set)}
	case r.Kind == SubsetExcept && o.Kind == SubsetExcept:
		return SubsetRestriction[A]{Kind: SubsetExcept, Set: r.Set.intersection(o.Set)}
	case r.Kind == SubsetThese:
		return SubsetRestriction[A]{Kind: SubsetExcept, Set: o.Set.difference(r.Set)}
	default:
		return SubsetRestriction[A]{Kind: SubsetExcept, Set: r.Set.difference(o.Set)}
	}
}

// Intersection 交
func (r SubsetRestriction[A]) Intersection(o SubsetRestriction[A]) SubsetRestriction[A] {
	switch {
	case r.Kind == SubsetWhole:
		return o
	case o.Kind == SubsetWhole:
		return r
	case r.Kind == SubsetThese && o.Kind == SubsetThese:
		return SubsetRestriction[A]{Kind: SubsetThese, Set: r.Set.intersection(o.Set)}
	case r.Kind == SubsetExcept && o.Kind == SubsetExcept:
		return SubsetRestriction[A]{Kind: SubsetExcept, Set: r.Set.union(o.Set)}
	case r.Kind == SubsetThese:
		return SubsetRestriction[A]{Kind: SubsetThese, Set: r.Set.difference(o.Set)}
	default:
		return SubsetRestriction[A]{Kind: SubsetThese, Set: o.Set.difference(r.Set)}
	}
}

// Contains 元素是否落在范围内
func (r SubsetRestriction[A]) Contains(a A) bool {
	switch r.Kind {
	case SubsetThese:
		return r.Set.Has(a)
	case SubsetExcept:
		return !r.Set.Has(a)
	default:
		return true
	}
}

// Complexity 元素个数（Whole 为 0）
func (r SubsetRestriction[A]) Complexity() int {
	if r.Kind == SubsetWhole {
		return 0
	}
	return len(r.Set)
}
