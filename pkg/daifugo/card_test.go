package daifugo

import (
	"testing"
)

// TestNewDeck 测试牌堆构建
func TestNewDeck(t *testing.T) {
	tests := []struct {
		name     string
		jokers   int
		expected int
	}{
		{"无王", 0, 52},
		{"单王", 1, 53},
		{"双王", 2, 54},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck := NewDeck(tt.jokers)
			if len(deck) != tt.expected {
				t.Errorf("len(NewDeck(%d)) = %v, want %v", tt.jokers, len(deck), tt.expected)
			}
			if got := deck.Jokers(); got != tt.jokers {
				t.Errorf("Jokers() = %v, want %v", got, tt.jokers)
			}
		})
	}
}

// TestNewDeck_NoDuplicates 普通牌不应重复
func TestNewDeck_NoDuplicates(t *testing.T) {
	deck := NewDeck(0)
	seen := make(map[Card]bool)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
}

// TestCardsDraw 测试抽牌
func TestCardsDraw(t *testing.T) {
	deck := Cards{NewCard(Rank3, SuitSpade), NewCard(Rank4, SuitHeart)}

	card, ok := deck.Draw()
	if !ok {
		t.Fatal("Draw() should succeed")
	}
	if !card.Equal(NewCard(Rank3, SuitSpade)) {
		t.Errorf("Draw() = %v, want spade 3", card)
	}
	if len(deck) != 1 {
		t.Errorf("len(deck) = %v, want 1", len(deck))
	}

	deck.Draw()
	if _, ok := deck.Draw(); ok {
		t.Error("Draw() on empty deck should fail")
	}
}

// TestCardsDeal 测试发牌
// 牌发完为止，除不尽时后面的玩家少一张，所有手牌合起来无重复
func TestCardsDeal(t *testing.T) {
	deck := NewDeck(2)
	deck.Shuffle()
	hands := deck.Deal(4)

	if len(hands) != 4 {
		t.Fatalf("len(hands) = %v, want 4", len(hands))
	}

	// 54 张发给 4 人：14,14,13,13
	expected := []int{14, 14, 13, 13}
	total := 0
	seen := make(map[Card]int)
	for i, hand := range hands {
		if len(hand) != expected[i] {
			t.Errorf("len(hands[%d]) = %v, want %v", i, len(hand), expected[i])
		}
		total += len(hand)
		for _, c := range hand {
			seen[c]++
		}
	}
	if total != 54 {
		t.Errorf("total = %v, want 54", total)
	}
	for c, n := range seen {
		if !c.IsJoker() && n > 1 {
			t.Errorf("card %v dealt %d times", c, n)
		}
	}
	if seen[NewJoker()] != 2 {
		t.Errorf("jokers dealt %d times, want 2", seen[NewJoker()])
	}
}

// TestCardsDeal_Invalid 非法参数
func TestCardsDeal_Invalid(t *testing.T) {
	if hands := NewDeck(0).Deal(0); hands != nil {
		t.Error("Deal(0) should return nil")
	}
	if hands := (Cards{}).Deal(3); hands != nil {
		t.Error("Deal on empty deck should return nil")
	}
}
