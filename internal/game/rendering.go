package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// This file contains the text rendering used by the CLI and debug logs.

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorGray  = "\033[90m"
)

const (
	emptySymbol    = "·"
	obstacleSymbol = "▲"
)

var sideColors = map[core.Side]string{
	core.Controlled: ColorBlue,
	core.Hostile:    ColorRed,
}

var sideLetters = map[core.Side]string{
	core.Controlled: "F",
	core.Hostile:    "A",
}

// String renders the battlefield without colors
func (s *State) String() string {
	return s.Render(false)
}

// Render draws the grid with one two-character cell per square. Controlled
// units are F<n>, hostile units A<n> where n is the last digit of the ID.
func (s *State) Render(color bool) string {
	var sb strings.Builder
	sb.Grow((s.layout.Width*3 + 4) * (s.layout.Height + 2))

	sb.WriteString("   ")
	for x := 0; x < s.layout.Width; x++ {
		fmt.Fprintf(&sb, "%3d", x)
	}
	sb.WriteString("\n")

	for y := 0; y < s.layout.Height; y++ {
		fmt.Fprintf(&sb, "%3d", y)
		for x := 0; x < s.layout.Width; x++ {
			sb.WriteString(" ")
			s.writeCell(&sb, s.grid.At(core.NewCoordinate(x, y)), color)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "ply %d, %s to move\n", s.Ply, s.ToMove)
	for _, u := range s.units {
		status := "alive"
		if !u.IsAlive() {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  %s (%s)\n", u, status)
	}
	return sb.String()
}

func (s *State) writeCell(sb *strings.Builder, o core.Occupant, color bool) {
	switch o.Kind {
	case core.OccupantUnit:
		u := s.units[o.Index]
		if color {
			sb.WriteString(sideColors[u.Side])
		}
		fmt.Fprintf(sb, "%s%d", sideLetters[u.Side], u.ID%10)
		if color {
			sb.WriteString(ColorReset)
		}
	case core.OccupantObstacle:
		if color {
			sb.WriteString(ColorGray)
		}
		sb.WriteString(obstacleSymbol + obstacleSymbol)
		if color {
			sb.WriteString(ColorReset)
		}
	default:
		sb.WriteString(" " + emptySymbol)
	}
}
