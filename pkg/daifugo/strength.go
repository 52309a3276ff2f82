package daifugo

import "sort"

// OrderMode 当前生效的强度排序模式
// Revolution 是持续状态，直到下一次革命才再翻转；
// ElevenBack 只持续到场上清空为止，是革命的一个子版本：
// 生效中会把革命的效果再翻转一次
type OrderMode struct {
	Revolution bool // 革命
	ElevenBack bool // 11バック
}

// Inverted 当前强度顺序是否被反转
func (m OrderMode) Inverted() bool {
	return m.Revolution != m.ElevenBack
}

// MaxStrength 王的强度，任何模式下都是全场最大
const MaxStrength uint8 = 16

// baseline 返回基准点数：3..10 为本值，J=11 Q=12 K=13 A=14 2=15
func (r Rank) baseline() uint8 {
	switch r {
	case RankA:
		return 14
	case Rank2:
		return 15
	case RankJoker:
		return MaxStrength
	default:
		return uint8(r)
	}
}

// Strength 返回牌在 3..16 工作区间上的强度
// 反转时 3 映射为 14（最大的普通牌），2 映射为 3，A 映射为 4，
// 其余点数 r (4..13) 映射为 17-r。
// 注意：反转时 K (17-13=4) 与 A (4) 强度相同，这里保留为真正的平局：
// 互相压不过对方，排序时按花色决胜
func (r Rank) Strength(mode OrderMode) uint8 {
	if r == RankJoker {
		return MaxStrength
	}
	if !mode.Inverted() {
		return r.baseline()
	}
	switch r {
	case Rank3:
		return 14
	case Rank2:
		return 3
	case RankA:
		return 4
	default:
		return 17 - r.baseline()
	}
}

// Strength 返回牌的强度
func (c Card) Strength(mode OrderMode) uint8 {
	return c.Rank.Strength(mode)
}

// Sort 按强度稳定升序排序，强度相同时按固定花色顺序决胜
// 手牌展示和找组合中最弱的一张都用这个顺序
func (cs Cards) Sort(mode OrderMode) {
	sort.SliceStable(cs, func(i, j int) bool {
		si, sj := cs[i].Strength(mode), cs[j].Strength(mode)
		if si != sj {
			return si < sj
		}
		return cs[i].Suit < cs[j].Suit
	})
}
