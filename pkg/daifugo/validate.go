package daifugo

import "errors"

// 出牌被拒绝的原因，文案由展示层负责
var (
	ErrEmptySelection          = errors.New("empty selection")
	ErrNotACombination         = errors.New("not a combination")
	ErrCardCountMismatch       = errors.New("card count mismatch")
	ErrCombinationTypeMismatch = errors.New("combination type mismatch")
	ErrSuitLockViolation       = errors.New("suit lock violation")
	ErrTooWeak                 = errors.New("too weak")
)

// MoveResult 合法出牌触发的副作用汇总
// 是否真正改变桌面状态由状态机按规则开关决定
type MoveResult struct {
	Kind         MoveKind
	Revolution   bool // 出牌张数 >= 4
	EightCut     bool // 含点数8的非王牌
	ElevenBack   bool // 含J的非王牌
	Spade3       bool // 黑桃3反制了单王
	Shibari      bool // 本次建立或维持了缚り
	Rokurokubi   bool // 恰好两张6的对子
	Kyukyusha    bool // 恰好两张9的对子
	SkipCount    int  // 点数5的张数
	WatashiCount int  // 点数7的张数
	BomberCount  int  // 含Q时为出牌总张数，否则为0
}

// Validate 校验一手牌能否压过场上的牌，并计算触发的副作用
// last 为空表示场上没有牌（新场），此时任何合法组合都可出。
// revolution/elevenBack 是桌面当前的持续状态；
// 强度比较使用 elevenBack 且 rules.ElevenBack 同时成立时的反转效果。
// 校验失败返回具体的拒绝原因，桌面状态不会被改变
func Validate(cards Cards, revolution, elevenBack bool, last Cards, rules Rules, shibariActive bool) (*MoveResult, error) {
	if len(cards) == 0 {
		return nil, ErrEmptySelection
	}

	move := ParseMove(cards, rules)
	if move.Kind == MoveKindNone {
		return nil, ErrNotACombination
	}

	mode := OrderMode{
		Revolution: revolution,
		ElevenBack: rules.ElevenBack && elevenBack,
	}

	var spade3, shibari bool
	if len(last) > 0 {
		if len(cards) != len(last) {
			return nil, ErrCardCountMismatch
		}
		prev := ParseMove(last, rules)
		if prev.Kind != move.Kind {
			return nil, ErrCombinationTypeMismatch
		}

		// 黑桃3反制：无条件成立，不再做缚り和强度检查
		if rules.Spade3Counter && prev.isSingleJoker() && move.isSpadeThree() {
			spade3 = true
		} else {
			if rules.Shibari {
				ok, locked := checkShibari(prev, move, shibariActive)
				if !ok {
					return nil, ErrSuitLockViolation
				}
				shibari = locked
			}
			if move.LeadStrength(mode) <= prev.LeadStrength(mode) {
				return nil, ErrTooWeak
			}
		}
	}

	res := move.sideEffects()
	res.Spade3 = spade3
	res.Shibari = shibari
	return res, nil
}

// checkShibari 缚り检查
// 已生效时：候选的非王花色必须覆盖上一手的花色集合，缺的花色用王补，
// 补不上则违反缚り；王是花色上的万能牌，每张王最多补一个缺口。
// 未生效时：候选的花色集合恰好等于上一手的集合（王可补缺、且不引入
// 集合之外的花色）则建立缚り，建立只作为副作用上报，不会导致拒绝
func checkShibari(prev, cand *Move, active bool) (ok bool, locked bool) {
	prevSet := prev.SuitSet()
	candSet := cand.SuitSet()

	missing := 0
	for suit := range prevSet {
		if !candSet[suit] {
			missing++
		}
	}

	if active {
		if missing > cand.jokers {
			return false, false
		}
		return true, true
	}

	if len(prevSet) == 0 {
		return true, false
	}
	for suit := range candSet {
		if !prevSet[suit] {
			return true, false
		}
	}
	return true, missing <= cand.jokers
}

// sideEffects 从完整的出牌集合计算副作用
// 阶段也逐张扫描，5-6-7 这样的连张同样累计 skip 和渡し
func (m *Move) sideEffects() *MoveResult {
	res := &MoveResult{
		Kind:       m.Kind,
		Revolution: len(m.Cards) >= 4,
	}

	hasQueen := false
	for _, c := range m.normals {
		switch c.Rank {
		case Rank8:
			res.EightCut = true
		case RankJ:
			res.ElevenBack = true
		case Rank5:
			res.SkipCount++
		case Rank7:
			res.WatashiCount++
		case RankQ:
			hasQueen = true
		}
	}
	if hasQueen {
		res.BomberCount = len(m.Cards)
	}

	if m.Kind == MoveKindPair && len(m.Cards) == 2 && len(m.normals) == 2 {
		switch m.normals[0].Rank {
		case Rank6:
			res.Rokurokubi = true
		case Rank9:
			res.Kyukyusha = true
		}
	}

	return res
}
