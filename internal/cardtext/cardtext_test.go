package cardtext

import (
	"testing"

	"github.com/lox/discarder/internal/deck"
)

func TestParseHand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []deck.Card
		wantErr bool
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "simple hand",
			input: "AS KH 5S TC 6D",
			want: []deck.Card{
				deck.NewCard(deck.Ace, deck.Spades),
				deck.NewCard(deck.King, deck.Hearts),
				deck.NewCard(deck.Five, deck.Spades),
				deck.NewCard(deck.Ten, deck.Clubs),
				deck.NewCard(deck.Six, deck.Diamonds),
			},
		},
		{
			name:  "lowercase accepted",
			input: "as kh",
			want: []deck.Card{
				deck.NewCard(deck.Ace, deck.Spades),
				deck.NewCard(deck.King, deck.Hearts),
			},
		},
		{
			name:    "bad rank",
			input:   "XS",
			wantErr: true,
		},
		{
			name:    "bad suit",
			input:   "AX",
			wantErr: true,
		},
		{
			name:    "odd-length card",
			input:   "A",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseHand(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ParseHand(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
