package model

// EventFilter selects rows of the event table. Nil bounds are open and an
// empty Keys slice matches any event signature. A FromBlock above ToBlock
// is not rejected; it simply matches nothing.
type EventFilter struct {
	FromBlock *BlockNumber
	ToBlock   *BlockNumber
	Keys      []EventKey
}

// BlockRangeFilter builds a filter for the inclusive range [from, to].
func BlockRangeFilter(from, to BlockNumber, keys []EventKey) EventFilter {
	return EventFilter{FromBlock: &from, ToBlock: &to, Keys: keys}
}
