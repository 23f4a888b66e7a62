// Package cardtext parses the two-character card notation ("AS", "TH")
// and whitespace-separated hand lists used at the CLI and test
// boundaries. None of this belongs to the core: the classifier, sampler,
// and driver consume deck.Card values directly.
package cardtext

import (
	"fmt"
	"strings"

	"github.com/lox/discarder/internal/deck"
)

// ParseHand parses a whitespace-separated list of two-character cards
// ("AS KH 5S TC 6D") into a slice of deck.Card, in the order given.
func ParseHand(s string) ([]deck.Card, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}

	cards := make([]deck.Card, 0, len(fields))
	for _, field := range fields {
		card, err := ParseCard(field)
		if err != nil {
			return nil, fmt.Errorf("cardtext: %q: %w", field, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ParseCard parses a single two-character card, e.g. "AS" or "Td".
func ParseCard(s string) (deck.Card, error) {
	if len(s) != 2 {
		return deck.Card{}, fmt.Errorf("card must be exactly 2 characters, got %q", s)
	}
	rank, err := parseRank(s[0])
	if err != nil {
		return deck.Card{}, err
	}
	suit, err := parseSuit(s[1])
	if err != nil {
		return deck.Card{}, err
	}
	return deck.NewCard(rank, suit), nil
}

func parseRank(c byte) (deck.Rank, error) {
	switch c {
	case 'A', 'a':
		return deck.Ace, nil
	case 'K', 'k':
		return deck.King, nil
	case 'Q', 'q':
		return deck.Queen, nil
	case 'J', 'j':
		return deck.Jack, nil
	case 'T', 't':
		return deck.Ten, nil
	case '9':
		return deck.Nine, nil
	case '8':
		return deck.Eight, nil
	case '7':
		return deck.Seven, nil
	case '6':
		return deck.Six, nil
	case '5':
		return deck.Five, nil
	case '4':
		return deck.Four, nil
	case '3':
		return deck.Three, nil
	case '2':
		return deck.Two, nil
	default:
		return 0, fmt.Errorf("unknown rank %q", c)
	}
}

func parseSuit(c byte) (deck.Suit, error) {
	switch c {
	case 'H', 'h':
		return deck.Hearts, nil
	case 'D', 'd':
		return deck.Diamonds, nil
	case 'C', 'c':
		return deck.Clubs, nil
	case 'S', 's':
		return deck.Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", c)
	}
}
