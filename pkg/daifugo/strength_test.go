package daifugo

import (
	"testing"
)

// ascendingRanks 通常顺序下从弱到强的点数序列
var ascendingRanks = []Rank{Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA, Rank2, RankJoker}

// TestStrength_Normal 通常顺序下强度沿 3,4,...,2,王 严格递增
func TestStrength_Normal(t *testing.T) {
	mode := OrderMode{}
	for i := 1; i < len(ascendingRanks); i++ {
		prev := ascendingRanks[i-1].Strength(mode)
		curr := ascendingRanks[i].Strength(mode)
		if curr <= prev {
			t.Errorf("Strength(%v)=%v should be greater than Strength(%v)=%v",
				ascendingRanks[i], curr, ascendingRanks[i-1], prev)
		}
	}
}

// TestStrength_Inverted 反转时沿同一序列从 3 开始严格递减
// 例外：K 与 A 的碰撞保留为平局，王仍然最大
func TestStrength_Inverted(t *testing.T) {
	mode := OrderMode{Revolution: true}
	for i := 1; i < len(ascendingRanks)-1; i++ {
		a, b := ascendingRanks[i-1], ascendingRanks[i]
		sa, sb := a.Strength(mode), b.Strength(mode)
		if a == RankK && b == RankA {
			if sa != sb {
				t.Errorf("K/A should tie under inversion, got %v and %v", sa, sb)
			}
			continue
		}
		if sb >= sa {
			t.Errorf("inverted Strength(%v)=%v should be less than Strength(%v)=%v", b, sb, a, sa)
		}
	}
	if RankJoker.Strength(mode) != MaxStrength {
		t.Errorf("joker strength = %v, want %v", RankJoker.Strength(mode), MaxStrength)
	}
}

// TestStrength_InvertedValues 反转时的映射值
func TestStrength_InvertedValues(t *testing.T) {
	mode := OrderMode{Revolution: true}
	tests := []struct {
		name     string
		rank     Rank
		expected uint8
	}{
		{"3为最大普通牌", Rank3, 14},
		{"2映射为3", Rank2, 3},
		{"A映射为4", RankA, 4},
		{"K与A同值", RankK, 4},
		{"4映射为13", Rank4, 13},
		{"Q映射为5", RankQ, 5},
		{"王恒为16", RankJoker, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rank.Strength(mode); got != tt.expected {
				t.Errorf("Strength(%v) = %v, want %v", tt.rank, got, tt.expected)
			}
		})
	}
}

// TestOrderMode_Inverted 革命与 11バック 异或叠加
func TestOrderMode_Inverted(t *testing.T) {
	tests := []struct {
		name     string
		mode     OrderMode
		expected bool
	}{
		{"都未生效", OrderMode{}, false},
		{"仅革命", OrderMode{Revolution: true}, true},
		{"仅11バック", OrderMode{ElevenBack: true}, true},
		{"革命中11バック抵消", OrderMode{Revolution: true, ElevenBack: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Inverted(); got != tt.expected {
				t.Errorf("Inverted() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// TestCardsSort 排序按强度升序，同强度按固定花色顺序，且幂等
func TestCardsSort(t *testing.T) {
	mode := OrderMode{}
	hand := Cards{
		NewJoker(),
		NewCard(Rank2, SuitClub),
		NewCard(Rank5, SuitSpade),
		NewCard(Rank5, SuitDiamond),
		NewCard(Rank3, SuitHeart),
	}

	hand.Sort(mode)

	expected := Cards{
		NewCard(Rank3, SuitHeart),
		NewCard(Rank5, SuitDiamond),
		NewCard(Rank5, SuitSpade),
		NewCard(Rank2, SuitClub),
		NewJoker(),
	}
	for i := range expected {
		if !hand[i].Equal(expected[i]) {
			t.Fatalf("hand[%d] = %v, want %v", i, hand[i], expected[i])
		}
	}

	// 幂等：再排一次结果不变
	sorted := hand.Clone()
	hand.Sort(mode)
	for i := range sorted {
		if !hand[i].Equal(sorted[i]) {
			t.Fatalf("sort not idempotent at %d: %v != %v", i, hand[i], sorted[i])
		}
	}
}
