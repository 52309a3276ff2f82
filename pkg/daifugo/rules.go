package daifugo

// Rules 一局内固定不变的规则开关
// 随快照下发，托管决策方按实际生效的规则判断
type Rules struct {
	Shibari       bool `json:"shibari"`        // 花色缚り
	Spade3Counter bool `json:"spade3_counter"` // 黑桃3反制单王
	Staircase     bool `json:"staircase"`      // 阶段（同花连续）
	ElevenBack    bool `json:"eleven_back"`    // 11バック
	Revolution    bool `json:"revolution"`     // 革命
}

// DefaultRules 全部开启的默认规则
func DefaultRules() Rules {
	return Rules{
		Shibari:       true,
		Spade3Counter: true,
		Staircase:     true,
		ElevenBack:    true,
		Revolution:    true,
	}
}
