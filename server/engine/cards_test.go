package engine

import (
	"errors"
	"testing"
)

func TestNewDeckHas54UniqueCards(t *testing.T) {
	d := NewDeck()
	if d.Size() != 54 {
		t.Fatalf("expected 54 cards, got %d", d.Size())
	}
	seen := map[Card]bool{}
	for _, c := range d.Cards {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
	jokers := 0
	for c := range seen {
		if c.Suit == JokerS {
			jokers++
		}
	}
	if jokers != 2 {
		t.Fatalf("expected 2 jokers, got %d", jokers)
	}
}

func TestShuffleKeepsAllCards(t *testing.T) {
	d := NewDeck()
	d.Shuffle(42)
	if d.Size() != 54 {
		t.Fatalf("shuffle changed deck size to %d", d.Size())
	}
	seen := map[Card]bool{}
	for _, c := range d.Cards {
		seen[c] = true
	}
	if len(seen) != 54 {
		t.Fatalf("shuffle lost cards, %d distinct remain", len(seen))
	}
}

func TestDealRemovesFromTop(t *testing.T) {
	d := NewDeck()
	first := d.Cards[0]
	got, err := d.Deal(5)
	if err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	if len(got) != 5 || got[0] != first {
		t.Fatalf("deal returned wrong cards: %v", got)
	}
	if d.Size() != 49 {
		t.Fatalf("expected 49 cards left, got %d", d.Size())
	}
}

func TestDealExhaustsDeck(t *testing.T) {
	d := NewDeck()
	if _, err := d.Deal(55); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
	if d.Size() != 54 {
		t.Fatalf("failed deal mutated the deck, size=%d", d.Size())
	}
}

func TestRemoveCard(t *testing.T) {
	d := NewDeck()
	want := Card{Suit: Hearts, Rank: Seven}
	got, err := d.RemoveCard(want)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got != want {
		t.Fatalf("removed wrong card %s", got)
	}
	if d.Size() != 53 {
		t.Fatalf("expected 53 cards left, got %d", d.Size())
	}
	if _, err := d.RemoveCard(want); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound on second remove, got %v", err)
	}
}

func TestRemoveAtOutOfRange(t *testing.T) {
	d := NewDeck()
	if _, err := d.RemoveAt(54); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
	if _, err := d.RemoveAt(-1); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCardStrings(t *testing.T) {
	cases := map[Card]string{
		{Suit: Hearts, Rank: Seven}:  "7H",
		{Suit: Spades, Rank: Ten}:    "10S",
		{Suit: Clubs, Rank: Jack}:    "JC",
		{Suit: Diamonds, Rank: Ace}:  "AD",
		{Suit: JokerS, Rank: Black}:  "JOKER-B",
		{Suit: JokerS, Rank: Red}:    "JOKER-R",
		{Suit: Hearts, Rank: Queen}:  "QH",
		{Suit: Diamonds, Rank: King}: "KD",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Fatalf("%#v: expected %q, got %q", c, want, got)
		}
	}
}
