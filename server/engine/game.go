package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// NumCardsPerPlayer is the Kirves hand size.
const NumCardsPerPlayer = 5

type ActionKind string

const (
	ActionDeal      ActionKind = "DEAL"
	ActionPlayCard  ActionKind = "PLAY_CARD"
	ActionFold      ActionKind = "FOLD"
	ActionCut       ActionKind = "CUT"
	ActionAceOrTwo  ActionKind = "ACE_OR_TWO_DECISION"
	ActionSpeak     ActionKind = "SPEAK"
	ActionSpeakSuit ActionKind = "SPEAK_SUIT"
	ActionDiscard   ActionKind = "DISCARD"
	ActionSetValtti ActionKind = "SET_VALTTI"
)

// Game holds the authoritative state of one Kirves game. Dealer, Turn
// and FirstPlayerOfRound are seat indexes into Players, never separate
// objects, so a snapshot round-trips without identity fixups.
type Game struct {
	ID                 string    `json:"id"`
	Admin              string    `json:"admin"`
	Deck               Deck      `json:"deck"`
	Players            []*Player `json:"players"`
	Dealer             int       `json:"dealer"`
	Turn               int       `json:"turn"`
	FirstPlayerOfRound int       `json:"firstPlayerOfRound"`
	Valtti             Suit      `json:"valtti,omitempty"`
	ValttiCard         *Card     `json:"valttiCard,omitempty"`
	CutCard            *Card     `json:"cutCard,omitempty"`
	CanJoin            bool      `json:"canJoin"`
	CanDeal            bool      `json:"canDeal"`
	CanSetValtti       bool      `json:"canSetValtti"`
	ForcedGame         bool      `json:"forcedGame"`
	Message            string    `json:"message,omitempty"`
	HandID             int64     `json:"handId"`
}

// NewGame seats the admin as the first player, who also cuts for the
// first hand.
func NewGame(id, admin string) *Game {
	g := &Game{
		ID:      id,
		Admin:   admin,
		Deck:    NewDeck(),
		Players: []*Player{NewPlayer(admin)},
		CanJoin: true,
	}
	g.Deck.Shuffle(0)
	g.setDealer(0, 0)
	return g
}

func (g *Game) playerIndex(email string) int {
	for i, p := range g.Players {
		if p.Email == email {
			return i
		}
	}
	return -1
}

func (g *Game) Player(email string) *Player {
	if i := g.playerIndex(email); i >= 0 {
		return g.Players[i]
	}
	return nil
}

func (g *Game) nextIndex(i int) int {
	if len(g.Players) < 2 {
		return i
	}
	return (i + 1) % len(g.Players)
}

// AddPlayer seats a new player while joining is open. The newest joiner
// is offered the cut for the first hand.
func (g *Game) AddPlayer(email string) error {
	if !g.CanJoin {
		return fmt.Errorf("%w: id=%s", ErrGameClosed, g.ID)
	}
	if g.playerIndex(email) >= 0 {
		return fmt.Errorf("%w: %s in game id=%s", ErrAlreadyJoined, email, g.ID)
	}
	p := NewPlayer(email)
	g.Players = append(g.Players, p)
	g.resetAvailableActions()
	p.SetAvailableActions(ActionCut)
	return nil
}

// Cut opens a new hand: a fresh shuffled deck, and unless the cutter
// declines, one exposed cut card. A jack or joker cut forces the game
// and becomes the cutter's extra card.
func (g *Game) Cut(email string, declineCut bool, forcedCut *Card) error {
	cutter := g.playerIndex(email)
	if cutter < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	g.Deck = NewDeck()
	g.Deck.Shuffle(0)
	if declineCut {
		g.CutCard = nil
		g.Message = fmt.Sprintf("%s declined the cut", email)
	} else {
		var cut Card
		var err error
		if forcedCut != nil {
			cut, err = g.Deck.RemoveCard(*forcedCut)
		} else {
			cut, err = g.Deck.RemoveAt(rand.Intn(g.Deck.Size()))
		}
		if err != nil {
			return err
		}
		g.CutCard = &cut
		g.Message = fmt.Sprintf("Cut card is %s", cut)
		if cut.Rank == Jack || cut.Suit == JokerS {
			g.Players[cutter].SetExtraCard(cut)
			g.ForcedGame = true
		}
	}
	g.resetAvailableActions()
	g.Players[g.Dealer].SetAvailableActions(ActionDeal)
	g.Turn = g.Dealer
	g.CanDeal = true
	g.CanJoin = false
	return nil
}

// Deal hands out five fresh cards per seat and draws the trump
// candidate. forcedCandidate pins the candidate for deterministic play;
// pass nil for the normal top-of-deck draw.
func (g *Game) Deal(email string, forcedCandidate *Card) error {
	if !g.CanDeal {
		return fmt.Errorf("%w: DEAL", ErrActionNotAvailable)
	}
	me := g.playerIndex(email)
	if me < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	for _, p := range g.Players {
		p.PlayedCards = nil
		cards, err := g.Deck.Deal(NumCardsPerPlayer)
		if err != nil {
			return err
		}
		p.AddCards(cards)
	}
	var candidate Card
	var err error
	if forcedCandidate != nil {
		candidate, err = g.Deck.RemoveCard(*forcedCandidate)
	} else {
		candidate, err = g.Deck.RemoveAt(0)
	}
	if err != nil {
		return err
	}
	g.ValttiCard = &candidate
	if candidate.Suit == JokerS {
		if candidate.Rank == Black {
			g.Valtti = Spades
		} else {
			g.Valtti = Hearts
		}
	} else {
		g.Valtti = candidate.Suit
	}
	if g.anyExtraCard() || candidate.Suit == JokerS || candidate.Rank == Jack {
		g.Players[g.Dealer].SetExtraCard(candidate)
		g.ValttiCard = nil
		g.ForcedGame = true
	} else if candidate.Rank == Two || candidate.Rank == Ace {
		hide := 3
		if candidate.Rank == Two {
			hide = 2
		}
		if err := g.Players[g.Dealer].HideCards(hide); err != nil {
			return err
		}
		g.Players[g.Dealer].SetExtraCard(candidate)
		g.ValttiCard = nil
	}
	g.CanDeal = false
	g.CutCard = nil
	g.CanSetValtti = true
	next := g.nextIndex(me)
	g.setCardPlayer(next)
	g.FirstPlayerOfRound = next
	for _, p := range g.Players {
		p.ResetRoundsWon()
	}
	return nil
}

func (g *Game) anyExtraCard() bool {
	for _, p := range g.Players {
		if p.ExtraCard != nil {
			return true
		}
	}
	return false
}

// AceOrTwoDecision resolves the dealer's hidden-card draw. Keeping the
// extra card locks the trump resolved at deal; returning it exposes it
// as the face-up trump card again.
func (g *Game) AceOrTwoDecision(email string, keepExtraCard bool) error {
	me := g.playerIndex(email)
	if me < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	p := g.Players[me]
	if !keepExtraCard {
		g.ValttiCard = p.ExtraCard
		p.ClearExtraCard()
	} else {
		g.CanSetValtti = false
	}
	p.RevealHiddenCards()
	g.setCardPlayer(g.nextIndex(g.Dealer))
	return nil
}

// Discard resolves an extra-card obligation by dropping one hand card.
func (g *Game) Discard(email string, index int) error {
	me := g.playerIndex(email)
	if me < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	if err := g.Players[me].Discard(index); err != nil {
		return err
	}
	g.setCardPlayer(g.nextIndex(g.Dealer))
	return nil
}

// SetValtti declares the trump. A NoSuit argument keeps the face-up
// trump card's suit; an explicit suit discards the card. The declarer
// leads the first trick.
func (g *Game) SetValtti(email string, suit Suit) error {
	me := g.playerIndex(email)
	if me < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	if suit != NoSuit {
		if !suit.Valid() || suit == JokerS {
			return fmt.Errorf("%w: cannot declare %q as valtti", ErrActionNotAvailable, suit)
		}
		g.ValttiCard = nil
		g.Valtti = suit
	}
	g.CanSetValtti = false
	g.Players[me].DeclaredPlayer = true
	g.setCardPlayer(me)
	return nil
}

// PlayCard plays the hand card at index. Completing the rotation back
// to the trick's leader resolves the trick, and the fifth trick
// resolves the hand and rotates the dealer.
func (g *Game) PlayCard(email string, index int) error {
	me := g.playerIndex(email)
	if me < 0 {
		return fmt.Errorf("%w: %s", ErrNotPlayer, email)
	}
	p := g.Players[me]
	if err := p.PlayCard(index); err != nil {
		return err
	}
	g.setCardPlayer(g.nextIndex(me))
	if g.Turn != g.FirstPlayerOfRound {
		return nil
	}
	round := len(p.PlayedCards) - 1
	offset := g.FirstPlayerOfRound
	played := make([]Card, 0, len(g.Players))
	for i := 0; i < len(g.Players); i++ {
		cardPlayer := g.Players[(offset+i)%len(g.Players)]
		if round >= len(cardPlayer.PlayedCards) {
			return fmt.Errorf("%w: seat %s has no card for trick %d", ErrUnreachableState, cardPlayer.Email, round)
		}
		played = append(played, cardPlayer.PlayedCards[round])
	}
	winner := (WinningCard(played, g.Valtti) + offset) % len(g.Players)
	g.Players[winner].AddRoundWon(round)

	if round < NumCardsPerPlayer-1 {
		g.setCardPlayer(winner)
		g.FirstPlayerOfRound = winner
		return nil
	}
	handWinner, err := g.HandWinner()
	if err != nil {
		return err
	}
	g.Message = fmt.Sprintf("Hand winner is %s", handWinner.Email)
	g.setDealer(g.nextIndex(g.Dealer), g.Dealer)
	return nil
}

// pendingDiscarder is the ordered tie-break for simultaneous extra
// cards: the first holder in seating order resolves first.
func (g *Game) pendingDiscarder() int {
	for i, p := range g.Players {
		if p.ExtraCard != nil {
			return i
		}
	}
	return -1
}

// setCardPlayer recomputes the turn after every state advance. Debt is
// resolved before normal play: the dealer's hidden cards first, then
// any unresolved extra card, then the nominal next player.
func (g *Game) setCardPlayer(next int) {
	g.resetAvailableActions()
	if g.Players[g.Dealer].HasInvisibleCards() {
		g.Turn = g.Dealer
		g.Players[g.Turn].SetAvailableActions(ActionAceOrTwo)
		return
	}
	if d := g.pendingDiscarder(); d >= 0 {
		g.Turn = d
		g.Players[d].SetAvailableActions(ActionDiscard)
		return
	}
	g.Turn = next
	if g.CanSetValtti && !g.ForcedGame {
		g.Players[g.Turn].SetAvailableActions(ActionSetValtti)
	} else {
		g.Players[g.Turn].SetAvailableActions(ActionPlayCard)
	}
}

func (g *Game) setDealer(dealer, cutter int) {
	g.Dealer = dealer
	g.Turn = cutter
	g.CanDeal = false
	g.ValttiCard = nil
	g.Valtti = NoSuit
	g.CanSetValtti = false
	g.ForcedGame = false
	for _, p := range g.Players {
		p.DeclaredPlayer = false
	}
	g.resetAvailableActions()
	g.Players[cutter].SetAvailableActions(ActionCut)
}

func (g *Game) resetAvailableActions() {
	for _, p := range g.Players {
		p.ResetAvailableActions()
	}
}

// HandWinner resolves the hand after the fifth trick: three tricks win
// outright, a lone two-trick player wins, of two two-trick players the
// earlier second trick wins, and five single-trick winners fall to the
// final trick.
func (g *Game) HandWinner() (*Player, error) {
	for _, p := range g.Players {
		if len(p.RoundsWon) >= 3 {
			return p, nil
		}
	}
	var two []*Player
	for _, p := range g.Players {
		if len(p.RoundsWon) == 2 {
			two = append(two, p)
		}
	}
	if len(two) == 1 {
		return two[0], nil
	}
	if len(two) == 2 {
		if two[0].RoundsWon[1] > two[1].RoundsWon[1] {
			return two[1], nil
		}
		return two[0], nil
	}
	var one []*Player
	for _, p := range g.Players {
		if len(p.RoundsWon) == 1 {
			one = append(one, p)
		}
	}
	if len(one) == 5 {
		for _, p := range one {
			if p.RoundsWon[0] == NumCardsPerPlayer-1 {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unable to determine hand winner", ErrUnreachableState)
}

// RoundWinner is the player who won the given trick this hand, if any.
func (g *Game) RoundWinner(round int) *Player {
	for _, p := range g.Players {
		for _, won := range p.RoundsWon {
			if won == round {
				return p
			}
		}
	}
	return nil
}

// WinningCard returns the index (in play order) of the winning card of
// a completed trick.
func WinningCard(played []Card, valtti Suit) int {
	leader := 0
	for i := 1; i < len(played); i++ {
		if candidateWins(played[leader], played[i], valtti) {
			leader = i
		}
	}
	return leader
}

// candidateWins compares one card against the current trick leader.
// Jacks and jokers count as trump regardless of their printed suit.
func candidateWins(leader, candidate Card, valtti Suit) bool {
	leaderSuit := effectiveSuit(leader, valtti)
	candidateSuit := effectiveSuit(candidate, valtti)
	if candidateSuit == valtti && leaderSuit != valtti {
		return true
	}
	return candidateSuit == leaderSuit && convertedRank(candidate) > convertedRank(leader)
}

func effectiveSuit(c Card, valtti Suit) Suit {
	if c.Suit == JokerS || c.Rank == Jack {
		return valtti
	}
	return c.Suit
}

// convertedRank fixes the jack ordering independent of trump:
// diamonds < hearts < spades < clubs, all above the ace.
func convertedRank(c Card) int {
	if c.Rank == Jack {
		switch c.Suit {
		case Diamonds:
			return 15
		case Hearts:
			return 16
		case Spades:
			return 17
		case Clubs:
			return 18
		}
	}
	return int(c.Rank)
}

func (g *Game) IsMyTurn(email string) bool {
	i := g.playerIndex(email)
	return i >= 0 && i == g.Turn
}

func (g *Game) HasActionAvailable(email string, a ActionKind) bool {
	p := g.Player(email)
	return p != nil && p.HasActionAvailable(a)
}

// PlayerWithAction returns the email of the first seat currently
// offered the action, or "".
func (g *Game) PlayerWithAction(a ActionKind) string {
	for _, p := range g.Players {
		if p.HasActionAvailable(a) {
			return p.Email
		}
	}
	return ""
}

// IncrementHandID opens a new hand scope for the action log.
func (g *Game) IncrementHandID() int64 {
	g.HandID++
	return g.HandID
}

// Clone deep-copies the game. Transactions snapshot with Clone so a
// rollback is a pure assignment.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Deck = Deck{Cards: append([]Card(nil), g.Deck.Cards...)}
	cp.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.Clone()
	}
	if g.ValttiCard != nil {
		c := *g.ValttiCard
		cp.ValttiCard = &c
	}
	if g.CutCard != nil {
		c := *g.CutCard
		cp.CutCard = &c
	}
	return &cp
}

// ToJSON serializes the game for the persistence gateway.
func (g *Game) ToJSON() ([]byte, error) {
	return json.Marshal(g)
}

// FromJSON rebuilds a game from its persisted form.
func FromJSON(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding game snapshot: %w", err)
	}
	return &g, nil
}
