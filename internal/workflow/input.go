package workflow

import "tradecoach/internal/ledger"

// Answer is the typed result of mapping an inbound reply at the transport
// boundary. The engine never inspects button label text.
type Answer int

const (
	AnswerNone Answer = iota
	AnswerAccept
	AnswerReject
	AnswerBack
	AnswerMainMenu
)

// MenuAction dispatches from the main menu.
type MenuAction int

const (
	MenuNone MenuAction = iota
	MenuNewTrade
	MenuJournal
	MenuBalance
	MenuMotivation
)

// Input is one inbound user action. Exactly one of the selection fields is
// meaningful for a given state; Text carries free-form input for the two
// text states (deposit amount, symbol).
type Input struct {
	Answer    Answer
	Menu      MenuAction
	Emotion   ledger.Emotion
	Direction ledger.Direction
	Text      string
}

// Button pairs a keyboard label with the typed input it produces. The
// transport matches incoming message text against the last rendered
// keyboard and hands the engine the Input.
type Button struct {
	Label string
	Input Input
}

// Photo is an optional rendered attachment (equity curve PNG).
type Photo struct {
	Bytes    []byte
	Filename string
}

// Reply is what one transition yields: prompt text, the closed keyboard of
// valid next inputs, and optionally a chart.
type Reply struct {
	Text           string
	Keyboard       [][]Button
	RemoveKeyboard bool
	Photo          *Photo
}
