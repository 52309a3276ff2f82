package daifugo

// PlayStatus 玩家状态
type PlayStatus int8

const (
	StatusWaiting  PlayStatus = iota // 等待中
	StatusReady                      // 准备好
	StatusPlaying                    // 游戏中
	StatusFinished                   // 已出完（终态，不会回退）
)

// Player 玩家信息
type Player struct {
	UserId int64      // 玩家ID
	Status PlayStatus // 玩家状态
	Hand   Cards      // 当前手里的牌
	Rank   int8       // 完成名次，0 表示未完成，1 为头名
}

// NewPlayer 创建一个新玩家
func NewPlayer(userId int64) Player {
	return Player{
		UserId: userId,
	}
}

// SetHand 设置玩家手牌
func (p *Player) SetHand(cards Cards) {
	p.Hand = cards
}

// Remove 从手牌中移除指定的牌
// 返回是否全部移除成功（手牌中是否有这些牌），失败时手牌不变
func (p *Player) Remove(cards Cards) bool {
	handCopy := p.Hand.Clone()

	for _, card := range cards {
		found := false
		for i, handCard := range handCopy {
			if handCard.Equal(card) {
				handCopy = append(handCopy[:i], handCopy[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	p.Hand = handCopy
	return true
}

// HandCount 返回手牌数量
func (p *Player) HandCount() int {
	return len(p.Hand)
}
