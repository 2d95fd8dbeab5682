package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(80, 24, 5, AddrCellWidth)
	require.Equal(t, 14, l.Rows)
	require.Equal(t, 5, l.Cols)
	require.Equal(t, 5*AddrCellWidth+4, l.BoxWidth)
	require.Equal(t, 19, l.StatusY)
	require.Equal(t, 22, l.HelpY)

	narrow := ComputeLayout(40, 5, 5, AddrCellWidth)
	require.Equal(t, 1, narrow.Rows)
	require.Equal(t, 2, narrow.Cols)

	tiny := ComputeLayout(4, 5, 5, AddrCellWidth)
	require.Equal(t, 1, tiny.Cols)
}

func TestFormatAddr(t *testing.T) {
	require.Equal(t, "000140001000", FormatAddr(0x140001000))
}

func TestDraw(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(40, 10)

	DrawBox(s, 0, 0, 20, 3, StyleBox, "SIG")
	DrawText(s, 2, 1, StyleInput, "48 8B")
	DrawTextCentered(s, 10, 5, StyleDim, "abcd")

	at := func(x, y int) rune {
		r, _, _, _ := s.GetContent(x, y)
		return r
	}
	require.Equal(t, '┌', at(0, 0))
	require.Equal(t, '┐', at(19, 0))
	require.Equal(t, '└', at(0, 2))
	require.Equal(t, '┘', at(19, 2))
	require.Equal(t, 'S', at(3, 0))
	require.Equal(t, '4', at(2, 1))
	require.Equal(t, 'B', at(6, 1))
	require.Equal(t, 'a', at(8, 5))
}
