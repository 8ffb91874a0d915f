/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

// CellView is what a renderer may know about a cell. Category stays nil
// until the cell is revealed.
type CellView struct {
	Index    int       `json:"index"`
	Label    int       `json:"label"`
	Revealed bool      `json:"revealed"`
	Category *Category `json:"category,omitempty"`
}

// State is a read-only snapshot of an Engine, safe to hand to a renderer.
type State struct {
	Mode    Mode       `json:"mode"`
	Phase   Phase      `json:"phase"`
	Columns int        `json:"columns"`
	Cells   []CellView `json:"cells"`

	PlayerOne Category `json:"player1,omitempty"`
	PlayerTwo Category `json:"player2,omitempty"`
	Turn      Player   `json:"turn,omitempty"`

	Outcome Outcome `json:"outcome,omitempty"`
	Winner  Player  `json:"winner,omitempty"`

	Revealed  int `json:"revealed"`
	Remaining int `json:"remaining,omitempty"`
}

func (e *Engine) State() State {
	s := State{
		Mode:    e.mode,
		Phase:   e.Phase(),
		Columns: Columns,
		Cells:   make([]CellView, len(e.cells)),
		Turn:    e.turn,
		Outcome: e.outcome,
		Winner:  e.winner,
	}

	for i := range e.cells {
		s.Cells[i] = e.view(i)
		if e.cells[i].revealed {
			s.Revealed++
		}
	}

	if c, ok := e.Choice(PlayerOne); ok {
		s.PlayerOne = c
	}
	if c, ok := e.Choice(PlayerTwo); ok {
		s.PlayerTwo = c
	}

	if e.mode == Solo && e.cells != nil {
		s.Remaining = e.remaining(e.choices[0])
	}

	return s
}
