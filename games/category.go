/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownMode     = errors.New("unknown game mode")
)

// Category is the meme hidden under a cell, and the meme a player bets on.
// The zero value is not a valid category.
type Category uint8

const (
	Shrek Category = iota + 1
	Sigma
)

// Categories lists every valid category, in display order.
var Categories = []Category{Shrek, Sigma}

func (c Category) Valid() bool {
	return c == Shrek || c == Sigma
}

// Opposite returns the other category. Invalid categories map to themselves.
func (c Category) Opposite() Category {
	switch c {
	case Shrek:
		return Sigma
	case Sigma:
		return Shrek
	default:
		return c
	}
}

func (c Category) String() string {
	switch c {
	case Shrek:
		return "Shrek"
	case Sigma:
		return "Sigma"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}

	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// ParseCategory accepts "Shrek" or "Sigma", ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	name := strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(name, c.String()) {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Mode selects between the single-player and hot-seat two-player rules.
type Mode uint8

const (
	Solo Mode = iota
	Versus
)

func (m Mode) String() string {
	switch m {
	case Solo:
		return "solo"
	case Versus:
		return "versus"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != Solo && m != Versus {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, uint8(m))
	}

	return []byte(m.String()), nil
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solo":
		return Solo, nil
	case "versus":
		return Versus, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Player identifies a seat in versus mode. NoPlayer is used for "nobody",
// e.g. the winner of an unfinished round or the turn in solo mode.
type Player uint8

const (
	NoPlayer Player = iota
	PlayerOne
	PlayerTwo
)

// Other returns the opposing seat.
func (p Player) Other() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "player1"
	case PlayerTwo:
		return "player2"
	default:
		return ""
	}
}

func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
