package daifugo

import "math/rand/v2"

// Suit 牌的花色
// 枚举顺序即固定的花色优先级（方块 < 梅花 < 红桃 < 黑桃 < 王），
// 用于同强度牌的排序决胜
type Suit uint8

const (
	SuitNone    Suit = iota
	SuitDiamond      // 方块
	SuitClub         // 梅花
	SuitHeart        // 红桃
	SuitSpade        // 黑桃
	SuitJoker        // 王
)

// Rank 牌的点数
type Rank uint8

const (
	RankNone Rank = iota
	RankA
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankJoker
)

// Card 代表一张扑克牌
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard
func NewCard(rank Rank, suit Suit) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// NewJoker 创建一张王
func NewJoker() Card {
	return Card{
		Rank: RankJoker,
		Suit: SuitJoker,
	}
}

// IsJoker 判断是否为王
func (c Card) IsJoker() bool {
	return c.Rank == RankJoker
}

// Equal 按 (点数, 花色) 判断两张牌是否相同
func (c Card) Equal(other Card) bool {
	return c.Rank == other.Rank && c.Suit == other.Suit
}

type Cards []Card

// NewDeck 生成一副牌
// jokers 表示额外加入的王的数量，整副牌为 52 + jokers 张
func NewDeck(jokers int) Cards {
	cards := make(Cards, 0, 52+jokers)

	suits := []Suit{SuitDiamond, SuitClub, SuitHeart, SuitSpade}
	ranks := []Rank{RankA, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK}

	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	for range jokers {
		cards = append(cards, NewJoker())
	}

	return cards
}

// Shuffle 洗牌，随机打乱牌的顺序
func (cs Cards) Shuffle() {
	rand.Shuffle(len(cs), func(i, j int) {
		cs[i], cs[j] = cs[j], cs[i]
	})
}

// Draw 从牌堆顶抽出一张牌
// 第二个返回值为 false 表示牌堆已空
func (cs *Cards) Draw() (Card, bool) {
	if len(*cs) == 0 {
		return Card{}, false
	}
	card := (*cs)[0]
	*cs = (*cs)[1:]
	return card, true
}

// Deal 发牌，按当前顺序轮流发给指定数量的玩家，发完为止
// 牌数不能被玩家数整除时，后面的玩家会少一张，这是预期行为
func (cs Cards) Deal(players int) []Cards {
	if players <= 0 || len(cs) == 0 {
		return nil
	}

	hands := make([]Cards, players)
	for i := range hands {
		hands[i] = make(Cards, 0, (len(cs)+players-1)/players)
	}
	for i, card := range cs {
		hands[i%players] = append(hands[i%players], card)
	}

	return hands
}

// Contains 判断是否包含指定的牌
func (cs Cards) Contains(card Card) bool {
	for _, c := range cs {
		if c.Equal(card) {
			return true
		}
	}
	return false
}

// Jokers 返回王的数量
func (cs Cards) Jokers() (count int) {
	for _, c := range cs {
		if c.IsJoker() {
			count++
		}
	}
	return
}

// Clone 复制一份牌
func (cs Cards) Clone() Cards {
	cloned := make(Cards, len(cs))
	copy(cloned, cs)
	return cloned
}
