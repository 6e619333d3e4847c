package engine

import (
	"fmt"
	"math/rand"
	"time"
)

type Suit string

const (
	NoSuit   Suit = ""
	Clubs    Suit = "CLUBS"
	Diamonds Suit = "DIAMONDS"
	Hearts   Suit = "HEARTS"
	Spades   Suit = "SPADES"
	JokerS   Suit = "JOKER"
)

func (s Suit) Valid() bool {
	switch s {
	case Clubs, Diamonds, Hearts, Spades, JokerS:
		return true
	}
	return false
}

// Rank carries the numeric comparison value directly. BLACK and RED are
// the joker markers; their values sit above the club jack's converted
// rank (18) because jokers are the top trumps.
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
	Black Rank = 19
	Red   Rank = 20
)

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	if c.Suit == JokerS {
		if c.Rank == Black {
			return "JOKER-B"
		}
		return "JOKER-R"
	}
	var r string
	switch c.Rank {
	case Jack:
		r = "J"
	case Queen:
		r = "Q"
	case King:
		r = "K"
	case Ace:
		r = "A"
	default:
		r = fmt.Sprintf("%d", int(c.Rank))
	}
	if c.Suit == NoSuit {
		return r
	}
	return r + string(c.Suit[0])
}

// Deck is an ordered sequence of cards. The zero value is an empty deck.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck builds the 54-card Kirves deck: 52 standard cards plus the
// black and red jokers.
func NewDeck() Deck {
	var cards []Card
	for _, s := range []Suit{Clubs, Diamonds, Hearts, Spades} {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	cards = append(cards, Card{Suit: JokerS, Rank: Black}, Card{Suit: JokerS, Rank: Red})
	return Deck{Cards: cards}
}

// Shuffle permutes the deck in place and returns it for chaining.
// seed 0 means "use the clock".
func (d *Deck) Shuffle(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
	return d
}

func (d *Deck) Size() int { return len(d.Cards) }

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.Cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, len(d.Cards))
	}
	out := make([]Card, n)
	copy(out, d.Cards[:n])
	d.Cards = d.Cards[n:]
	return out, nil
}

// RemoveAt removes and returns the card at index i.
func (d *Deck) RemoveAt(i int) (Card, error) {
	if i < 0 || i >= len(d.Cards) {
		return Card{}, fmt.Errorf("%w: index %d in deck of %d", ErrCardNotFound, i, len(d.Cards))
	}
	c := d.Cards[i]
	d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
	return c, nil
}

// RemoveCard removes and returns the card equal to c.
func (d *Deck) RemoveCard(c Card) (Card, error) {
	for i, have := range d.Cards {
		if have == c {
			return d.RemoveAt(i)
		}
	}
	return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, c)
}
