/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"fmt"
	"math/rand"
)

const (
	GridSize = 36
	Columns  = 6
)

type Phase uint8

const (
	AwaitingChoice Phase = iota
	InProgress
	Terminal
)

func (p Phase) String() string {
	switch p {
	case AwaitingChoice:
		return "awaiting_choice"
	case InProgress:
		return "in_progress"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Outcome is the result of a finished round.
type Outcome uint8

const (
	None Outcome = iota
	// Lost: the solo player revealed a cell of the other category.
	Lost
	// Cleared: the solo player revealed every cell of their category.
	Cleared
	// Won: versus only, see Engine.Winner.
	Won
)

func (o Outcome) String() string {
	switch o {
	case None:
		return ""
	case Lost:
		return "lost"
	case Cleared:
		return "cleared"
	case Won:
		return "won"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Dealer assigns categories to a fresh grid. Deal must return n categories;
// missing or invalid entries are replaced with a coin flip.
type Dealer interface {
	Deal(n int) []Category
}

type DealerFunc func(n int) []Category

func (f DealerFunc) Deal(n int) []Category {
	return f(n)
}

type coinDealer struct{}

func (coinDealer) Deal(n int) []Category {
	out := make([]Category, n)
	for i := range out {
		out[i] = flip()
	}

	return out
}

func flip() Category {
	if rand.Intn(2) == 0 {
		return Shrek
	}

	return Sigma
}

type Option func(*Engine)

func WithDealer(d Dealer) Option {
	return func(e *Engine) {
		if d != nil {
			e.dealer = d
		}
	}
}

type cell struct {
	category Category
	revealed bool
}

// Engine holds the state of one meme grid and applies reveal rules to it.
//
// An Engine is not safe for concurrent use; it expects a single owner that
// runs each command to completion before issuing the next.
type Engine struct {
	mode   Mode
	dealer Dealer

	cells   []cell
	choices [2]Category
	turn    Player
	outcome Outcome
	winner  Player
}

func NewEngine(mode Mode, opts ...Option) *Engine {
	e := &Engine{
		mode:   mode,
		dealer: coinDealer{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// StartRound deals a new grid and records the chosen category. In versus
// mode the choice belongs to player one and player two gets the opposite.
// It reports false, and changes nothing, if c is not a valid category.
func (e *Engine) StartRound(c Category) bool {
	if !c.Valid() {
		return false
	}

	dealt := e.dealer.Deal(GridSize)

	e.cells = make([]cell, GridSize)
	for i := range e.cells {
		if i < len(dealt) && dealt[i].Valid() {
			e.cells[i].category = dealt[i]
		} else {
			e.cells[i].category = flip()
		}
	}

	e.choices = [2]Category{c, c.Opposite()}
	e.outcome = None
	e.winner = NoPlayer

	if e.mode == Versus {
		e.turn = PlayerOne
	} else {
		e.turn = NoPlayer
	}

	return true
}

// Reveal uncovers cell index and applies the round rules. Out-of-range
// indexes, already revealed cells, and reveals outside a running round are
// ignored; Reveal reports whether anything changed.
func (e *Engine) Reveal(index int) bool {
	if e.Phase() != InProgress {
		return false
	}
	if index < 0 || index >= len(e.cells) {
		return false
	}

	c := &e.cells[index]
	if c.revealed {
		return false
	}
	c.revealed = true

	switch e.mode {
	case Versus:
		if c.category != e.choiceOf(e.turn) {
			e.outcome = Won
			e.winner = e.turn.Other()
			return true
		}
		e.turn = e.turn.Other()

	default:
		if c.category != e.choices[0] {
			e.outcome = Lost
			return true
		}
		if e.remaining(e.choices[0]) == 0 {
			e.outcome = Cleared
		}
	}

	return true
}

// ResetToSelection drops the current round and waits for a new choice.
func (e *Engine) ResetToSelection() {
	e.cells = nil
	e.choices = [2]Category{}
	e.turn = NoPlayer
	e.outcome = None
	e.winner = NoPlayer
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) Phase() Phase {
	switch {
	case e.cells == nil:
		return AwaitingChoice
	case e.outcome != None:
		return Terminal
	default:
		return InProgress
	}
}

// Turn is the seat expected to reveal next. It is NoPlayer in solo mode
// and outside a round.
func (e *Engine) Turn() Player {
	return e.turn
}

func (e *Engine) Outcome() Outcome {
	return e.outcome
}

func (e *Engine) Winner() Player {
	return e.winner
}

// Choice returns the category chosen by p. In solo mode the single choice
// belongs to PlayerOne.
func (e *Engine) Choice(p Player) (Category, bool) {
	if e.cells == nil {
		return 0, false
	}

	switch {
	case p == PlayerOne:
		return e.choices[0], true
	case p == PlayerTwo && e.mode == Versus:
		return e.choices[1], true
	default:
		return 0, false
	}
}

// Cell returns the public view of cell index. The category is only set
// once the cell has been revealed.
func (e *Engine) Cell(index int) (CellView, bool) {
	if index < 0 || index >= len(e.cells) {
		return CellView{}, false
	}

	return e.view(index), true
}

func (e *Engine) view(index int) CellView {
	v := CellView{
		Index:    index,
		Label:    index + 1,
		Revealed: e.cells[index].revealed,
	}

	if v.Revealed {
		category := e.cells[index].category
		v.Category = &category
	}

	return v
}

func (e *Engine) choiceOf(p Player) Category {
	if p == PlayerTwo {
		return e.choices[1]
	}

	return e.choices[0]
}

func (e *Engine) remaining(c Category) int {
	n := 0
	for _, cl := range e.cells {
		if !cl.revealed && cl.category == c {
			n++
		}
	}

	return n
}
