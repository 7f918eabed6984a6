package core

import (
	"strings"
)

// ReactionSymbol is one of a closed set of reactions. The zero value means "no reaction".
type ReactionSymbol string

const (
	NoReaction ReactionSymbol = ""
	ThumbsUp   ReactionSymbol = "THUMBS_UP"
	Smile      ReactionSymbol = "SMILE"
	Heart      ReactionSymbol = "HEART"
	Surprised  ReactionSymbol = "SURPRISED"
	CatFrown   ReactionSymbol = "CAT_FROWN"
)

const variationSelector16 = "\ufe0f"

var reactionSymbols = []ReactionSymbol{ThumbsUp, Smile, Heart, Surprised, CatFrown}

var emojiBySymbol = map[ReactionSymbol]string{
	ThumbsUp:  "👍",
	Smile:     "😊",
	Heart:     "\u2764\ufe0f",
	Surprised: "😮",
	CatFrown:  "😾",
}

// ReactionSymbols returns all symbols in canonical display order.
func ReactionSymbols() []ReactionSymbol {
	out := make([]ReactionSymbol, len(reactionSymbols))
	copy(out, reactionSymbols)

	return out
}

// ParseReactionSymbol accepts the symbol name (case-insensitive) or its emoji.
// The heart is also accepted without the variation selector.
func ParseReactionSymbol(s string) (ReactionSymbol, error) {
	trimmed := strings.TrimSpace(s)

	candidate := ReactionSymbol(strings.ToUpper(trimmed))
	if candidate.IsValid() {
		return candidate, nil
	}

	normalized := strings.TrimSuffix(trimmed, variationSelector16)
	for symbol, emoji := range emojiBySymbol {
		if strings.TrimSuffix(emoji, variationSelector16) == normalized {
			return symbol, nil
		}
	}

	return NoReaction, NewValidationError(FieldReaction, "is not a known reaction symbol")
}

// IsValid reports whether s is one of the known symbols. NoReaction is not valid.
func (s ReactionSymbol) IsValid() bool {
	_, ok := emojiBySymbol[s]
	return ok
}

// IsNone reports whether s is NoReaction.
func (s ReactionSymbol) IsNone() bool {
	return s == NoReaction
}

// Emoji returns the rendered form, or "" for unknown symbols.
func (s ReactionSymbol) Emoji() string {
	return emojiBySymbol[s]
}

// Rank is the position in canonical display order, or -1.
func (s ReactionSymbol) Rank() int {
	for i, symbol := range reactionSymbols {
		if symbol == s {
			return i
		}
	}

	return -1
}

func (s ReactionSymbol) String() string {
	return string(s)
}
