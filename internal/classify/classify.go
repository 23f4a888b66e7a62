// Package classify implements the bit-parallel poker hand classifier:
// given an arbitrary-size multiset of cards, it flags which of the ten
// canonical hand categories are realizable as some 5-card subset.
//
// This is not best-five-card poker scoring. Four of a kind, for example,
// sets TwoPair because two pairs are selectable from four identical
// ranks; a straight flush sets Straight and Flush because the cards that
// witness it also witness the weaker categories.
package classify

import (
	"fmt"

	"github.com/lox/discarder/internal/deck"
	"github.com/lox/discarder/internal/tally"
)

// straightMasks holds the nine consecutive-rank masks (6-high through
// ace-high) plus the wheel (A-2-3-4-5, ace low).
var straightMasks = func() [10]uint16 {
	var masks [10]uint16
	for k := 2; k <= 10; k++ {
		masks[k-2] = 0b11111 << k
	}
	masks[9] = 0b1111<<2 | 1<<14 // wheel: A,2,3,4,5
	return masks
}()

const royalMask uint16 = 0b11111 << 10 // T,J,Q,K,A

// Classify increments, for each category realizable as some 5-card
// subset of hand, the corresponding counter in tally (at most once per
// call). HighCard is incremented whenever hand is non-empty. An empty
// hand leaves tally untouched.
//
// Classify panics if any card carries the sentinel invalid suit: that
// indicates a caller handed it an unfilled scratch-hand slot, a
// precondition violation rather than a recoverable condition.
func Classify(hand []deck.Card, t *tally.Tally) {
	if len(hand) == 0 {
		return
	}

	var rankCounts [15]int
	var suitCounts [4]int
	var suitRankBits [4]uint16
	var rankBits uint16

	for _, c := range hand {
		if c.Suit == deck.InvalidSuit {
			panic(fmt.Sprintf("classify: encountered sentinel invalid card %v", c))
		}
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
		suitRankBits[c.Suit] |= 1 << c.Rank
		rankBits |= 1 << c.Rank
	}

	var pairs, threes, fours, fives int
	for rank := 2; rank <= 14; rank++ {
		switch rankCounts[rank] {
		case 2:
			pairs++
		case 3:
			threes++
		case 4:
			fours++
		default:
			if rankCounts[rank] >= 5 {
				fives++
			}
		}
	}
	groups := pairs + threes + fours + fives

	t.Inc(tally.HighCard)

	if groups >= 1 {
		t.Inc(tally.OnePair)
	}
	if groups >= 2 || fours >= 1 || fives >= 1 {
		t.Inc(tally.TwoPair)
	}
	if threes+fours+fives >= 1 {
		t.Inc(tally.ThreeOfAKind)
	}
	if fours+fives >= 1 {
		t.Inc(tally.FourOfAKind)
	}
	if (threes >= 1 && pairs >= 1) || (fours >= 1 && (pairs >= 1 || threes >= 1)) || threes >= 2 || fours >= 2 || fives >= 1 {
		t.Inc(tally.FullHouse)
	}

	flush := false
	for s := 0; s < 4; s++ {
		if suitCounts[s] >= 5 {
			flush = true
			break
		}
	}
	if flush {
		t.Inc(tally.Flush)
	}

	if hasStraight(rankBits) {
		t.Inc(tally.Straight)
	}

	straightFlush, royalFlush := false, false
	for s := 0; s < 4; s++ {
		if suitCounts[s] < 5 {
			continue
		}
		if suitRankBits[s]&royalMask == royalMask {
			straightFlush, royalFlush = true, true
			break
		}
		if hasStraight(suitRankBits[s]) {
			straightFlush = true
		}
	}
	if straightFlush {
		t.Inc(tally.StraightFlush)
	}
	if royalFlush {
		t.Inc(tally.RoyalFlush)
	}
}

func hasStraight(rankBits uint16) bool {
	for _, mask := range straightMasks {
		if rankBits&mask == mask {
			return true
		}
	}
	return false
}
