// Package host receives the presentational side effects of searching and
// signature creation: progress text, focus requests, clipboard writes and the
// completion bell. None of them influence results.
package host

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
)

type Host interface {
	Progress(msg string)
	// Found reports the n-th match (1-based) of a search.
	Found(n int, addr uint64)
	// Done ends a search with its match count.
	Done(matches int)
	Focus(addr uint64)
	Signature(sig string)
	Clipboard(text string) error
	Beep()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(string)        {}
func (Nop) Found(int, uint64)      {}
func (Nop) Done(int)               {}
func (Nop) Focus(uint64)           {}
func (Nop) Signature(string)       {}
func (Nop) Clipboard(string) error { return nil }
func (Nop) Beep()                  {}

// Console logs progress and results and rings the terminal bell.
type Console struct {
	Logger *log.Logger
	// Bell receives BEL on Beep; nil disables it.
	Bell io.Writer
	// WriteClipboard defaults to the system clipboard.
	WriteClipboard func(string) error
}

func NewConsole(logger *log.Logger, bell io.Writer) *Console {
	return &Console{Logger: logger, Bell: bell, WriteClipboard: clipboard.WriteAll}
}

func (c *Console) Progress(msg string) {
	c.Logger.Debug(msg)
}

func (c *Console) Found(n int, addr uint64) {
	c.Logger.Info(fmt.Sprintf("%d. Found at 0x%X", n, addr))
}

func (c *Console) Done(matches int) {
	switch {
	case matches == 0:
		c.Logger.Info("No matches found")
	case matches > 1:
		c.Logger.Info(fmt.Sprintf("Found %d matches", matches))
	}
}

func (c *Console) Focus(addr uint64) {
	c.Logger.Info("Jump", "addr", fmt.Sprintf("0x%X", addr))
}

func (c *Console) Signature(sig string) {
	c.Logger.Info(sig)
}

func (c *Console) Clipboard(text string) error {
	if c.WriteClipboard == nil {
		return nil
	}
	if err := c.WriteClipboard(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	c.Logger.Debug("copied to clipboard")
	return nil
}

func (c *Console) Beep() {
	if c.Bell != nil {
		fmt.Fprint(c.Bell, "\a")
	}
}
