package sigmaker

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/s-hammon/p"
	"github.com/s-hammon/sigmaker/internal/ui"
)

// Update is the outcome of one search run from the TUI.
type Update struct {
	Pattern string
	Matches []uint64
	Error   string
}

// TUIConfig wires the TUI to a searcher.
type TUIConfig struct {
	// Find runs a search. It is called off the event loop.
	Find func(pattern string) ([]uint64, error)
	// Describe labels an address in the status line; nil shows it in hex.
	Describe func(addr uint64) string
	Cols     int
	// JumpToFirst selects the first match when results arrive.
	JumpToFirst bool
}

func ColumnMajor[T any](vals []T, rows, cols int) []T {
	out := make([]T, 0, len(vals))
	for c := range cols {
		for r := range rows {
			idx := r + c*rows
			if idx < len(vals) {
				out = append(out, vals[idx])
			}
		}
	}

	return out
}

// pageStart returns the index of the first match on the page holding sel.
func pageStart(sel, perPage int) int {
	if sel < 0 || perPage <= 0 {
		return 0
	}
	return sel - sel%perPage
}

// statusText summarizes an update for the status box.
func statusText(u Update, searching bool) (string, tcell.Style) {
	switch {
	case searching:
		return "SEARCHING...", ui.StyleDim
	case u.Error != "":
		return u.Error, ui.StyleFail
	case u.Pattern == "":
		return "READY", ui.StyleDim
	case len(u.Matches) == 0:
		return "NO MATCH", ui.StyleFail
	case len(u.Matches) == 1:
		return "1 MATCH (UNIQUE)", ui.StyleOK
	}
	return p.Format("%d MATCHES", len(u.Matches)), ui.StyleOK
}

func RunTUI(cfg TUIConfig) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("tcell.NewScreen: %v", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("screen.Init: %v", err)
	}
	defer s.Fini()

	return runTUI(s, cfg)
}

func runTUI(s tcell.Screen, cfg TUIConfig) error {
	cols := max(cfg.Cols, 1)
	describe := cfg.Describe
	if describe == nil {
		describe = func(addr uint64) string { return p.Format("0x%X", addr) }
	}

	var (
		input     string
		last      Update
		searching bool
	)
	selected, rows, perPage := -1, 1, 1

	// Search results reach the event loop as interrupt events.
	updates := make(chan Update, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case u := <-updates:
				_ = s.PostEvent(tcell.NewEventInterrupt(u))
			case <-done:
				return
			}
		}
	}()

	redraw := func() {
		s.Clear()

		scrW, scrH := s.Size()
		layout := ui.ComputeLayout(scrW, scrH, cols, ui.AddrCellWidth)
		rows, perPage = layout.Rows, layout.Rows*layout.Cols

		start := pageStart(selected, perPage)
		page := last.Matches[min(start, len(last.Matches)):]
		page = page[:min(len(page), perPage)]
		flat := ColumnMajor(page, layout.Rows, layout.Cols)

		startX := max((scrW-layout.BoxWidth)/2, 0)

		ui.DrawBox(s, startX, 0, layout.BoxWidth, 3, ui.StyleBox, "SIGNATURE")
		ui.DrawText(s, startX+layout.PaddingX, 1, ui.StyleInput, input)

		title := ""
		if len(last.Matches) > perPage {
			title = p.Format("%d-%d OF %d", start+1, start+len(page), len(last.Matches))
		}
		ui.DrawBox(s, startX, 3, layout.BoxWidth, layout.Rows+2, ui.StyleBox, title)
		for i, addr := range flat {
			// flat is column-major; recover the row and column.
			c, r := i/layout.Rows, i%layout.Rows
			style := ui.StyleText
			if start+i == selected {
				style = ui.StyleSelected
			}

			x := startX + layout.PaddingX + c*layout.CellWidth
			ui.DrawText(s, x, 4+r, style, ui.FormatAddr(addr))
		}

		ui.DrawBox(s, startX, layout.StatusY, layout.BoxWidth, 3, ui.StyleBox, "")
		text, style := statusText(last, searching)
		if !searching && selected >= 0 && selected < len(last.Matches) {
			text += "  " + describe(last.Matches[selected])
		}
		ui.DrawTextCentered(s, startX+layout.BoxWidth/2, layout.StatusY+1, style, text)

		help := "Esc/Ctrl+C: quit  |  Enter: search  |  Arrows: select  |  Backspace: delete"
		ui.DrawTextCentered(s, scrW/2, layout.HelpY, ui.StyleDim, help)
		s.Show()
	}

	move := func(delta int) {
		if len(last.Matches) == 0 {
			return
		}
		selected = min(max(selected+delta, 0), len(last.Matches)-1)
	}

	redraw()

	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			u, ok := ev.Data().(Update)
			if !ok {
				continue
			}
			searching = false
			last = u
			selected = -1
			if cfg.JumpToFirst && len(u.Matches) > 0 {
				selected = 0
			}
			redraw()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyEnter:
				if searching || cfg.Find == nil {
					break
				}
				searching = true
				pattern := input
				go func() {
					u := Update{Pattern: pattern}
					m, err := cfg.Find(pattern)
					if err != nil {
						u.Error = err.Error()
					}
					u.Matches = m
					select {
					case updates <- u:
					case <-done:
					}
				}()
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if len(input) > 0 {
					input = input[:len(input)-1]
				}
			case tcell.KeyDown:
				move(1)
			case tcell.KeyUp:
				move(-1)
			case tcell.KeyRight:
				move(rows)
			case tcell.KeyLeft:
				move(-rows)
			case tcell.KeyPgDn:
				move(perPage)
			case tcell.KeyPgUp:
				move(-perPage)
			default:
				if ev.Rune() != 0 {
					input += string(ev.Rune())
				}
			}

			redraw()
		case *tcell.EventResize:
			s.Sync()
			redraw()
		}
	}
}
