package console

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/term"
)

// ANSI escape sequences understood by common terminal emulators.
const (
	// ClearScreen clears the terminal and homes the cursor.
	ClearScreen = "\x1b[2J\x1b[;H"
	// HideCursor hides the cursor (not pure VT100, but widely supported).
	HideCursor = "\x1b[?25l"
	// ShowCursor makes the cursor visible again.
	ShowCursor = "\x1b[?25h"

	// eraseLine clears from the cursor to the end of the line.
	eraseLine = "\x1b[K"
)

// CursorUp moves the cursor up n lines, to the start of the line.
func CursorUp(n int) string {
	return fmt.Sprintf("\x1b[%dF", n)
}

// CursorDown moves the cursor down n lines, to the start of the line.
func CursorDown(n int) string {
	return fmt.Sprintf("\x1b[%dE", n)
}

// Keys reads single bytes from r and delivers them on the returned channel.
// The channel closes when r is exhausted or the context is cancelled.
func Keys(ctx context.Context, r io.Reader) <-chan byte {
	keys := make(chan byte, 8)

	go func() {
		defer close(keys)

		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					log.Printf("Error reading keys: %v", err)
				}
				return
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	return keys
}

// Raw puts the terminal attached to fd into raw mode so key presses arrive
// one byte at a time, without echo and without waiting for Enter. The
// returned restore function reverts the terminal and must run before the
// process exits.
func Raw(fd int) (restore func() error, err error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	return func() error {
		return term.Restore(fd, state)
	}, nil
}

// IsTerminal reports whether fd is attached to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
