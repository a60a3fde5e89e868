package workflow

// State is the wizard cursor position. The wizard is a fixed graph: every
// run enters from MainMenu (or SetBalance on first contact) and funnels
// back to MainMenu on success, cancel or any failed gate.
type State int

const (
	StateSetBalance State = iota
	StateMainMenu
	// StateTradeJournal is view-only: the journal renders from the menu and
	// never awaits input of its own.
	StateTradeJournal
	StateEmotionCheck
	StatePlanCheck
	StateSymbolEntry
	StateDirectionSelect
	StateExtremumCheck
	StateLiquidityZoneCheck
	StateBreakoutCheck
	StateBounceConfirmationCheck
	StateEntryConfirmation
	StateTradeResult
)

var stateNames = map[State]string{
	StateSetBalance:              "SetBalance",
	StateMainMenu:                "MainMenu",
	StateTradeJournal:            "TradeJournal",
	StateEmotionCheck:            "EmotionCheck",
	StatePlanCheck:               "PlanCheck",
	StateSymbolEntry:             "SymbolEntry",
	StateDirectionSelect:         "DirectionSelect",
	StateExtremumCheck:           "ExtremumCheck",
	StateLiquidityZoneCheck:      "LiquidityZoneCheck",
	StateBreakoutCheck:           "BreakoutCheck",
	StateBounceConfirmationCheck: "BounceConfirmationCheck",
	StateEntryConfirmation:       "EntryConfirmation",
	StateTradeResult:             "TradeResult",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// backTargets is the literal "back" transition table: one fixed predecessor
// per state, no history stack. Pressing back twice walks this chain, which
// is not necessarily the path the user actually took.
var backTargets = map[State]State{
	StatePlanCheck:               StateEmotionCheck,
	StateSymbolEntry:             StateEmotionCheck,
	StateDirectionSelect:         StateSymbolEntry,
	StateExtremumCheck:           StateDirectionSelect,
	StateLiquidityZoneCheck:      StateExtremumCheck,
	StateBreakoutCheck:           StateLiquidityZoneCheck,
	StateBounceConfirmationCheck: StateBreakoutCheck,
	StateEntryConfirmation:       StateBounceConfirmationCheck,
	StateTradeResult:             StateEntryConfirmation,
}

// AcceptsText reports whether state consumes free-form text instead of a
// keyboard choice (deposit amount, instrument symbol).
func AcceptsText(s State) bool {
	return s == StateSetBalance || s == StateSymbolEntry
}
