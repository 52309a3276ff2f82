package daifugo

// IsPlayable 判断一张手牌能否参与某个合法出牌，用于提示高亮
// 只做便宜的同点数搜索：阶段开启时用「同花或王的张数是否足够」
// 做保守的放宽近似，可能多亮不会少亮；
// 真正出牌时一定会再经过 Validate 校验
func IsPlayable(card Card, hand Cards, revolution, elevenBack bool, last Cards, rules Rules, shibariActive bool) bool {
	// 新场，任何牌都能出
	if len(last) == 0 {
		return true
	}

	// 上一手是单张，直接校验单张
	if len(last) == 1 {
		_, err := Validate(Cards{card}, revolution, elevenBack, last, rules, shibariActive)
		return err == nil
	}

	need := len(last)
	if card.IsJoker() {
		return jokerPlayable(card, hand, need, revolution, elevenBack, last, rules, shibariActive)
	}

	// 收集手里同点数的牌和王
	var sameRank, jokers Cards
	for _, c := range hand {
		if c.IsJoker() {
			jokers = append(jokers, c)
		} else if c.Rank == card.Rank {
			sameRank = append(sameRank, c)
		}
	}

	if len(sameRank)+len(jokers) >= need {
		combo := buildCombo(card, sameRank, jokers, need)
		if _, err := Validate(combo, revolution, elevenBack, last, rules, shibariActive); err == nil {
			return true
		}
	}

	// 阶段的放宽近似：同花或王够张数就认为可能出得了
	if rules.Staircase && need >= 3 {
		count := 0
		for _, c := range hand {
			if c.IsJoker() || c.Suit == card.Suit {
				count++
			}
		}
		if count >= need {
			return true
		}
	}

	return false
}

// jokerPlayable 王参与出牌的判定
// 尝试手里出现过的每个点数配王凑出同点数组合，也尝试全王组合；
// 阶段开启且同点数都不行时保守地返回 true（文档化的近似，
// 最终合法性总会被重新校验）
func jokerPlayable(card Card, hand Cards, need int, revolution, elevenBack bool, last Cards, rules Rules, shibariActive bool) bool {
	var jokers Cards
	byRank := make(map[Rank]Cards)
	for _, c := range hand {
		if c.IsJoker() {
			jokers = append(jokers, c)
		} else {
			byRank[c.Rank] = append(byRank[c.Rank], c)
		}
	}

	for _, sameRank := range byRank {
		if len(sameRank)+len(jokers) < need {
			continue
		}
		combo := buildCombo(card, sameRank, jokers, need)
		if _, err := Validate(combo, revolution, elevenBack, last, rules, shibariActive); err == nil {
			return true
		}
	}

	// 全王组合
	if len(jokers) >= need {
		combo := make(Cards, 0, need)
		combo = append(combo, jokers[:need]...)
		if _, err := Validate(combo, revolution, elevenBack, last, rules, shibariActive); err == nil {
			return true
		}
	}

	if rules.Staircase && need >= 3 {
		return true
	}
	return false
}

// buildCombo 以 card 为锚，用同点数的牌和王凑出 need 张的组合
// sameRank/jokers 取自手牌，包含 card 本身时只跳过一张
func buildCombo(card Card, sameRank, jokers Cards, need int) Cards {
	combo := make(Cards, 0, need)
	combo = append(combo, card)
	skipped := false
	for _, c := range sameRank {
		if len(combo) >= need {
			break
		}
		if !skipped && c.Equal(card) {
			skipped = true
			continue
		}
		combo = append(combo, c)
	}
	for _, c := range jokers {
		if len(combo) >= need {
			break
		}
		if !skipped && c.Equal(card) {
			skipped = true
			continue
		}
		combo = append(combo, c)
	}
	return combo
}
