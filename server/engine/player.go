package engine

import "fmt"

// Player is the mutable per-seat state. Fields are exported so a Game
// snapshot serializes without a parallel DTO layer.
type Player struct {
	Email            string       `json:"email"`
	Nickname         string       `json:"nickname,omitempty"`
	Hand             []Card       `json:"hand"`
	PlayedCards      []Card       `json:"playedCards"`
	RoundsWon        []int        `json:"roundsWon"`
	ExtraCard        *Card        `json:"extraCard,omitempty"`
	Invisible        []Card       `json:"invisible,omitempty"`
	AvailableActions []ActionKind `json:"availableActions"`
	DeclaredPlayer   bool         `json:"declaredPlayer"`
}

func NewPlayer(email string) *Player {
	return &Player{Email: email}
}

func (p *Player) AddCards(cards []Card) {
	p.Hand = append(p.Hand, cards...)
}

// PlayCard moves the hand card at index into the played pile.
func (p *Player) PlayCard(index int) error {
	if index < 0 || index >= len(p.Hand) {
		return fmt.Errorf("%w: %d (hand size %d)", ErrInvalidIndex, index, len(p.Hand))
	}
	c := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	p.PlayedCards = append(p.PlayedCards, c)
	return nil
}

// Discard removes the hand card at index from play entirely and folds
// the pending extra card into the hand. It consumes the extra-card
// obligation, not the turn obligation.
func (p *Player) Discard(index int) error {
	if index < 0 || index >= len(p.Hand) {
		return fmt.Errorf("%w: %d (hand size %d)", ErrInvalidIndex, index, len(p.Hand))
	}
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	if p.ExtraCard != nil {
		p.Hand = append(p.Hand, *p.ExtraCard)
		p.ExtraCard = nil
	}
	return nil
}

func (p *Player) SetExtraCard(c Card) {
	card := c
	p.ExtraCard = &card
}

func (p *Player) ClearExtraCard() {
	p.ExtraCard = nil
}

// HideCards moves the last n dealt cards out of the visible hand.
func (p *Player) HideCards(n int) error {
	if n < 0 || n > len(p.Hand) {
		return fmt.Errorf("%w: cannot hide %d of %d cards", ErrInvalidIndex, n, len(p.Hand))
	}
	cut := len(p.Hand) - n
	p.Invisible = append(p.Invisible, p.Hand[cut:]...)
	p.Hand = p.Hand[:cut]
	return nil
}

func (p *Player) HasInvisibleCards() bool { return len(p.Invisible) > 0 }

// RevealHiddenCards returns the hidden cards to the visible hand.
func (p *Player) RevealHiddenCards() {
	p.Hand = append(p.Hand, p.Invisible...)
	p.Invisible = nil
}

func (p *Player) AddRoundWon(trick int) {
	p.RoundsWon = append(p.RoundsWon, trick)
}

func (p *Player) ResetRoundsWon() {
	p.RoundsWon = nil
}

func (p *Player) ResetAvailableActions() {
	p.AvailableActions = nil
}

func (p *Player) SetAvailableActions(actions ...ActionKind) {
	p.AvailableActions = actions
}

func (p *Player) HasActionAvailable(a ActionKind) bool {
	for _, have := range p.AvailableActions {
		if have == a {
			return true
		}
	}
	return false
}

// Clone deep-copies the player so a game snapshot shares no state with
// the live instance.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Hand = append([]Card(nil), p.Hand...)
	cp.PlayedCards = append([]Card(nil), p.PlayedCards...)
	cp.RoundsWon = append([]int(nil), p.RoundsWon...)
	cp.Invisible = append([]Card(nil), p.Invisible...)
	cp.AvailableActions = append([]ActionKind(nil), p.AvailableActions...)
	if p.ExtraCard != nil {
		c := *p.ExtraCard
		cp.ExtraCard = &c
	}
	return &cp
}
