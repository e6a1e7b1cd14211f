// Package replline implements the raw-mode line editor spec §4.10/§4.11 describe for interactive use:
// history navigation (up/down), in-line editing (cursor movement, backspace, ctrl-A/E/U/K), and the two
// force-save shortcut codes (F3, ESC O R). worldiety-vfs carries no terminal/REPL layer of its own, so this
// package is new code grounded on riverlytech-art/pkg/supervisor/supervisor.go's use of golang.org/x/term
// for the termios raw-mode swap (MakeRaw/Restore with a deferred restore).
package replline

// lineBuffer is the in-progress input line as a rune slice plus a cursor index, kept separate from any
// terminal I/O so the editing rules themselves can be exercised without a real tty.
type lineBuffer struct {
	runes  []rune
	cursor int
}

func newLineBuffer(seed string) *lineBuffer {
	r := []rune(seed)
	return &lineBuffer{runes: r, cursor: len(r)}
}

func (b *lineBuffer) String() string {
	return string(b.runes)
}

func (b *lineBuffer) insert(r rune) {
	b.runes = append(b.runes[:b.cursor], append([]rune{r}, b.runes[b.cursor:]...)...)
	b.cursor++
}

// backspace removes the rune before the cursor, reporting whether it removed anything.
func (b *lineBuffer) backspace() bool {
	if b.cursor == 0 {
		return false
	}
	b.runes = append(b.runes[:b.cursor-1], b.runes[b.cursor:]...)
	b.cursor--
	return true
}

func (b *lineBuffer) deleteForward() bool {
	if b.cursor >= len(b.runes) {
		return false
	}
	b.runes = append(b.runes[:b.cursor], b.runes[b.cursor+1:]...)
	return true
}

func (b *lineBuffer) moveLeft() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return true
}

func (b *lineBuffer) moveRight() bool {
	if b.cursor >= len(b.runes) {
		return false
	}
	b.cursor++
	return true
}

func (b *lineBuffer) home() { b.cursor = 0 }
func (b *lineBuffer) end()  { b.cursor = len(b.runes) }

// killToStart removes everything before the cursor (ctrl-U), moving the cursor to 0.
func (b *lineBuffer) killToStart() {
	b.runes = b.runes[b.cursor:]
	b.cursor = 0
}

// killToEnd removes everything from the cursor onward (ctrl-K).
func (b *lineBuffer) killToEnd() {
	b.runes = b.runes[:b.cursor]
}

func (b *lineBuffer) reset(seed string) {
	b.runes = []rune(seed)
	b.cursor = len(b.runes)
}

func (b *lineBuffer) clear() {
	b.runes = b.runes[:0]
	b.cursor = 0
}
