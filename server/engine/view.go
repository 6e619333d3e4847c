package engine

// PlayerOut is the public view of one seat. Hands are never exposed
// here, only their size; the extra card is face-up information.
type PlayerOut struct {
	Email            string       `json:"email"`
	Nickname         string       `json:"nickname,omitempty"`
	CardsInHand      int          `json:"cardsInHand"`
	PlayedCards      []string     `json:"playedCards"`
	RoundsWon        []int        `json:"roundsWon"`
	AvailableActions []ActionKind `json:"availableActions"`
	ExtraCard        string       `json:"extraCard,omitempty"`
	DeclaredPlayer   bool         `json:"declaredPlayer"`
}

// GameOut is the state projection for one viewer: public state for
// everyone plus the viewer's own hand, extra card and permitted
// actions.
type GameOut struct {
	ID           string       `json:"id"`
	Admin        string       `json:"admin"`
	Players      []PlayerOut  `json:"players"`
	CardsInDeck  int          `json:"cardsInDeck"`
	Dealer       string       `json:"dealer"`
	Turn         string       `json:"turn"`
	MyCards      []string     `json:"myCardsInHand"`
	MyExtraCard  string       `json:"myExtraCard,omitempty"`
	MyActions    []ActionKind `json:"myAvailableActions"`
	Message      string       `json:"message,omitempty"`
	CanJoin      bool         `json:"canJoin"`
	ValttiCard   string       `json:"valttiCard,omitempty"`
	Valtti       string       `json:"valtti,omitempty"`
	CutCard      string       `json:"cutCard,omitempty"`
	ForcedGame   bool         `json:"forcedGame"`
	CanSetValtti bool         `json:"canSetValtti"`
}

// Out projects the game for the given viewer. An empty viewer (or a
// non-player) gets the public state only.
func (g *Game) Out(viewer string) GameOut {
	out := GameOut{
		ID:           g.ID,
		Admin:        g.Admin,
		CardsInDeck:  g.Deck.Size(),
		Dealer:       g.Players[g.Dealer].Email,
		Turn:         g.Players[g.Turn].Email,
		Message:      g.Message,
		CanJoin:      g.CanJoin,
		Valtti:       string(g.Valtti),
		ForcedGame:   g.ForcedGame,
		CanSetValtti: g.CanSetValtti,
	}
	if g.ValttiCard != nil {
		out.ValttiCard = g.ValttiCard.String()
	}
	if g.CutCard != nil {
		out.CutCard = g.CutCard.String()
	}
	for _, p := range g.Players {
		po := PlayerOut{
			Email:            p.Email,
			Nickname:         p.Nickname,
			CardsInHand:      len(p.Hand) + len(p.Invisible),
			PlayedCards:      cardStrings(p.PlayedCards),
			RoundsWon:        append([]int(nil), p.RoundsWon...),
			AvailableActions: append([]ActionKind(nil), p.AvailableActions...),
			DeclaredPlayer:   p.DeclaredPlayer,
		}
		if p.ExtraCard != nil {
			po.ExtraCard = p.ExtraCard.String()
		}
		out.Players = append(out.Players, po)
	}
	if me := g.Player(viewer); me != nil {
		out.MyCards = cardStrings(me.Hand)
		out.MyActions = append([]ActionKind(nil), me.AvailableActions...)
		if me.ExtraCard != nil {
			out.MyExtraCard = me.ExtraCard.String()
		}
	}
	return out
}

func cardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
