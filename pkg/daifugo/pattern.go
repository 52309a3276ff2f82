package daifugo

import "sort"

// MoveKind 组合类型
type MoveKind uint8

const (
	MoveKindNone     MoveKind = iota // 不是合法组合
	MoveKindPair                     // 同点数组合（含单张，全王也算）
	MoveKindSequence                 // 阶段（同花连续，王补缺口）
)

// Move 一手牌的解析结果
type Move struct {
	Kind    MoveKind
	Cards   Cards
	normals Cards // 除王以外的牌
	jokers  int   // 王的数量
}

// ParseMove 解析一手牌
// 先判断同点数组合：所有非王牌点数相同（全王也算同点数组合）。
// 再判断阶段：只有 staircase 规则开启且 >=3 张时，
// 非王牌必须同一花色、点数无重复，且按点数排序后相邻缺口的
// 总数不超过王的数量（每张王恰好补一个缺口单位）。
// 两者都不满足时 Kind 为 MoveKindNone
func ParseMove(cards Cards, rules Rules) *Move {
	m := &Move{
		Kind:  MoveKindNone,
		Cards: cards,
	}
	if len(cards) == 0 {
		return m
	}

	for _, c := range cards {
		if c.IsJoker() {
			m.jokers++
		} else {
			m.normals = append(m.normals, c)
		}
	}

	if m.isPair() {
		m.Kind = MoveKindPair
		return m
	}
	if rules.Staircase && len(cards) >= 3 && m.isSequence() {
		m.Kind = MoveKindSequence
		return m
	}
	return m
}

// isPair 所有非王牌是否点数相同
func (m *Move) isPair() bool {
	for _, c := range m.normals {
		if c.Rank != m.normals[0].Rank {
			return false
		}
	}
	return true
}

// isSequence 非王牌是否构成同花连续（王补缺口）
func (m *Move) isSequence() bool {
	if len(m.normals) == 0 {
		// 全王交给同点数组合处理
		return false
	}

	suit := m.normals[0].Suit
	for _, c := range m.normals {
		if c.Suit != suit {
			return false
		}
	}

	// 缺口判定用基准点数序（3..15），连续性是组合的结构属性，
	// 与当前的革命状态无关
	bases := make([]int, 0, len(m.normals))
	for _, c := range m.normals {
		bases = append(bases, int(c.Rank.baseline()))
	}
	sort.Ints(bases)

	gaps := 0
	for i := 1; i < len(bases); i++ {
		if bases[i] == bases[i-1] {
			return false
		}
		gaps += bases[i] - bases[i-1] - 1
	}
	return gaps <= m.jokers
}

// SuitSet 返回非王牌的花色集合
func (m *Move) SuitSet() map[Suit]bool {
	set := make(map[Suit]bool, 4)
	for _, c := range m.normals {
		set[c.Suit] = true
	}
	return set
}

// LeadStrength 返回组合的比较强度
// 同点数组合取任意一张的强度（非王牌点数相同），
// 阶段取最弱的一张非王牌的强度，全王组合取王的最大强度
func (m *Move) LeadStrength(mode OrderMode) uint8 {
	if len(m.normals) == 0 {
		return MaxStrength
	}
	lead := m.normals[0].Strength(mode)
	if m.Kind == MoveKindSequence {
		for _, c := range m.normals[1:] {
			if s := c.Strength(mode); s < lead {
				lead = s
			}
		}
	}
	return lead
}

// isSingleJoker 是否为单张王
func (m *Move) isSingleJoker() bool {
	return len(m.Cards) == 1 && m.jokers == 1
}

// isSpadeThree 是否恰好为黑桃3一张
func (m *Move) isSpadeThree() bool {
	return len(m.Cards) == 1 && m.Cards[0].Equal(NewCard(Rank3, SuitSpade))
}
