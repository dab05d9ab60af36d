package console

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

// Action identifies one editing operation decoded from the input stream.
type Action int

const (
	ActionText Action = iota
	ActionSubmit
	ActionBackspace
	ActionDelete
	ActionDeleteWordBack
	ActionDeleteWordForward
	ActionDeleteToStart
	ActionDeleteToEnd
	ActionMoveLeft
	ActionMoveRight
	ActionMoveWordLeft
	ActionMoveWordRight
	ActionMoveStart
	ActionMoveEnd
	ActionHistoryPrev
	ActionHistoryNext
	ActionHistoryFirst
	ActionHistoryLast
	ActionComplete
	ActionToggleInsert
	ActionPaste
	ActionClearLine
	ActionClose
	ActionCloseOrDelete
)

// Input is one decoded key event. Text is set for ActionText only.
type Input struct {
	Action Action
	Text   string
}

// ReadInputs decodes terminal bytes into editing actions until r fails,
// then closes out. Escape sequences are parsed incrementally so pasted
// text interleaved with arrows still comes through in order.
func ReadInputs(r io.Reader, out chan<- Input) {
	defer close(out)
	br := bufio.NewReader(r)
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case 0x1b:
			readEscape(br, out)
		case '\r':
			out <- Input{Action: ActionSubmit}
			lastWasCR = true
		case '\n':
			out <- Input{Action: ActionSubmit}
		case 0x7f, 0x08:
			out <- Input{Action: ActionBackspace}
		case 0x01:
			out <- Input{Action: ActionMoveStart}
		case 0x05:
			out <- Input{Action: ActionMoveEnd}
		case 0x15:
			out <- Input{Action: ActionDeleteToStart}
		case 0x0b:
			out <- Input{Action: ActionDeleteToEnd}
		case 0x17:
			out <- Input{Action: ActionDeleteWordBack}
		case 0x04:
			out <- Input{Action: ActionCloseOrDelete}
		case 0x03:
			out <- Input{Action: ActionClearLine}
		case 0x16:
			out <- Input{Action: ActionPaste}
		case 0x09:
			out <- Input{Action: ActionComplete}
		default:
			if b < 0x20 {
				continue
			}
			if b < utf8.RuneSelf {
				out <- Input{Action: ActionText, Text: string(rune(b))}
				continue
			}
			_ = br.UnreadByte()
			rn, _, err := br.ReadRune()
			if err != nil {
				return
			}
			if rn == utf8.RuneError {
				continue
			}
			out <- Input{Action: ActionText, Text: string(rn)}
		}
	}
}

func readEscape(br *bufio.Reader, out chan<- Input) {
	if br.Buffered() == 0 {
		out <- Input{Action: ActionClose}
		return
	}
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case '[':
		readCSI(br, out)
	case 'O':
		readSS3(br, out)
	case 'b', 'B':
		out <- Input{Action: ActionMoveWordLeft}
	case 'f', 'F':
		out <- Input{Action: ActionMoveWordRight}
	case 'd', 'D':
		out <- Input{Action: ActionDeleteWordForward}
	}
}

func readCSI(br *bufio.Reader, out chan<- Input) {
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return
		}
	}
	switch string(seq) {
	case "A":
		out <- Input{Action: ActionHistoryPrev}
	case "B":
		out <- Input{Action: ActionHistoryNext}
	case "C":
		out <- Input{Action: ActionMoveRight}
	case "D":
		out <- Input{Action: ActionMoveLeft}
	case "H":
		out <- Input{Action: ActionMoveStart}
	case "F":
		out <- Input{Action: ActionMoveEnd}
	case "1;5C":
		out <- Input{Action: ActionMoveWordRight}
	case "1;5D":
		out <- Input{Action: ActionMoveWordLeft}
	case "2~":
		out <- Input{Action: ActionToggleInsert}
	case "3~":
		out <- Input{Action: ActionDelete}
	case "3;5~":
		out <- Input{Action: ActionDeleteWordForward}
	case "5~":
		out <- Input{Action: ActionHistoryFirst}
	case "6~":
		out <- Input{Action: ActionHistoryLast}
	case "Z":
		out <- Input{Action: ActionComplete}
	}
}

func readSS3(br *bufio.Reader, out chan<- Input) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 'H':
		out <- Input{Action: ActionMoveStart}
	case 'F':
		out <- Input{Action: ActionMoveEnd}
	}
}
