package solver

import (
	"github.com/xinkaiwang/tabuplacer/services/tabuplacer/internal/costfunc"
)

// TabuMemory maps a move signature to its remaining tenure.
type TabuMemory struct {
	entries map[string]int
}

func NewTabuMemory() *TabuMemory {
	return &TabuMemory{entries: make(map[string]int)}
}

func (tm *TabuMemory) IsTabu(move costfunc.Move) bool {
	_, ok := tm.entries[move.GetSignature()]
	return ok
}

// Mark inserts move, or resets its tenure if already present.
func (tm *TabuMemory) Mark(move costfunc.Move, tenure int) {
	if tenure <= 0 {
		delete(tm.entries, move.GetSignature())
		return
	}
	tm.entries[move.GetSignature()] = tenure
}

// AgeAndPrune decrements every tenure and forgets moves that reach 0.
func (tm *TabuMemory) AgeAndPrune() {
	for sig, tenure := range tm.entries {
		if tenure <= 1 {
			delete(tm.entries, sig)
		} else {
			tm.entries[sig] = tenure - 1
		}
	}
}

func (tm *TabuMemory) Len() int {
	return len(tm.entries)
}
