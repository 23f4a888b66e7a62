package deck

// Deck is an ordered sequence of cards. Its order is observable by the
// reservoir sampler (which walks it by index) but carries no semantic
// meaning of its own — a Deck is a plain value with no hidden ownership.
// Duplicate cards are permitted; only NewStandardDeck guarantees none.
type Deck struct {
	Cards []Card
}

// New wraps an existing card slice as a Deck without copying.
func New(cards []Card) Deck {
	return Deck{Cards: cards}
}

// NewStandardDeck builds the 52 distinct rank x suit combinations.
func NewStandardDeck() Deck {
	cards := make([]Card, 0, 52)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return Deck{Cards: cards}
}
