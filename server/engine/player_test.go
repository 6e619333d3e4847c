package engine

import (
	"errors"
	"testing"
)

func handOf(cards ...Card) []Card { return cards }

func TestPlayCardMovesToPlayedPile(t *testing.T) {
	p := NewPlayer("a@example.com")
	p.AddCards(handOf(
		Card{Suit: Hearts, Rank: Seven},
		Card{Suit: Spades, Rank: King},
		Card{Suit: Clubs, Rank: Two},
	))
	if err := p.PlayCard(1); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if len(p.Hand) != 2 || len(p.PlayedCards) != 1 {
		t.Fatalf("unexpected sizes: hand=%d played=%d", len(p.Hand), len(p.PlayedCards))
	}
	if p.PlayedCards[0] != (Card{Suit: Spades, Rank: King}) {
		t.Fatalf("wrong card played: %s", p.PlayedCards[0])
	}
	if err := p.PlayCard(5); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestDiscardConsumesExtraCard(t *testing.T) {
	p := NewPlayer("a@example.com")
	p.AddCards(handOf(
		Card{Suit: Hearts, Rank: Seven},
		Card{Suit: Spades, Rank: King},
		Card{Suit: Clubs, Rank: Two},
		Card{Suit: Diamonds, Rank: Nine},
		Card{Suit: Hearts, Rank: Ace},
	))
	extra := Card{Suit: Clubs, Rank: Jack}
	p.SetExtraCard(extra)

	if err := p.Discard(0); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if p.ExtraCard != nil {
		t.Fatalf("extra card not consumed")
	}
	if len(p.Hand) != 5 {
		t.Fatalf("expected hand of 5 after discard, got %d", len(p.Hand))
	}
	if p.Hand[len(p.Hand)-1] != extra {
		t.Fatalf("extra card did not join the hand")
	}
	if len(p.PlayedCards) != 0 {
		t.Fatalf("discard must not touch played cards")
	}
}

func TestHideAndRevealCards(t *testing.T) {
	p := NewPlayer("a@example.com")
	p.AddCards(handOf(
		Card{Suit: Hearts, Rank: Seven},
		Card{Suit: Spades, Rank: King},
		Card{Suit: Clubs, Rank: Two},
		Card{Suit: Diamonds, Rank: Nine},
		Card{Suit: Hearts, Rank: Ace},
	))
	if err := p.HideCards(3); err != nil {
		t.Fatalf("hide failed: %v", err)
	}
	if len(p.Hand) != 2 || len(p.Invisible) != 3 {
		t.Fatalf("unexpected split: hand=%d invisible=%d", len(p.Hand), len(p.Invisible))
	}
	if !p.HasInvisibleCards() {
		t.Fatalf("expected invisible cards")
	}
	p.RevealHiddenCards()
	if len(p.Hand) != 5 || p.HasInvisibleCards() {
		t.Fatalf("reveal did not restore the hand: hand=%d", len(p.Hand))
	}
	if err := p.HideCards(6); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestAvailableActions(t *testing.T) {
	p := NewPlayer("a@example.com")
	p.SetAvailableActions(ActionCut, ActionDeal)
	if !p.HasActionAvailable(ActionCut) || !p.HasActionAvailable(ActionDeal) {
		t.Fatalf("actions not set: %v", p.AvailableActions)
	}
	p.ResetAvailableActions()
	if p.HasActionAvailable(ActionCut) {
		t.Fatalf("actions not reset")
	}
}

func TestPlayerCloneIsIndependent(t *testing.T) {
	p := NewPlayer("a@example.com")
	p.AddCards(handOf(Card{Suit: Hearts, Rank: Seven}))
	p.SetExtraCard(Card{Suit: Clubs, Rank: Jack})
	cp := p.Clone()
	cp.Hand[0] = Card{Suit: Spades, Rank: Two}
	cp.ExtraCard.Rank = Queen
	if p.Hand[0] != (Card{Suit: Hearts, Rank: Seven}) {
		t.Fatalf("clone shares hand storage")
	}
	if p.ExtraCard.Rank != Jack {
		t.Fatalf("clone shares extra card storage")
	}
}
