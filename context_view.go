package storyrunner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ContextView displays what is running right now.
type ContextView interface {
	Show(scenario, step string)
	Close()
}

type NopContextView struct{}

func (NopContextView) Show(string, string) {}

func (NopContextView) Close() {}

// TerminalContextView keeps a single status line on a terminal, redrawn on
// every Show and cleared by Close.
type TerminalContextView struct {
	out   io.Writer
	width int
	shown bool
}

func NewTerminalContextView(out io.Writer) *TerminalContextView {
	return &TerminalContextView{out: out, width: 80}
}

// Sized sets the line width in columns.
func (v *TerminalContextView) Sized(width int) *TerminalContextView {
	if width > 0 {
		v.width = width
	}
	return v
}

func (v *TerminalContextView) Show(scenario, step string) {
	line := truncate(scenario+": "+step, v.width)
	fmt.Fprint(v.out, "\r"+strings.Repeat(" ", v.width)+"\r")
	color.New(color.FgHiBlack).Fprint(v.out, line)
	v.shown = true
}

func (v *TerminalContextView) Close() {
	if !v.shown {
		return
	}
	fmt.Fprint(v.out, "\r"+strings.Repeat(" ", v.width)+"\r")
	v.shown = false
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
