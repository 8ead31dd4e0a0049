package model

type Notes = []uint8

// Chord is a group of note-ons that started close enough together to be
// heard as one attack.
type Chord struct {
	Frame uint64
	Notes Notes

	// Span is the distance in frames between the first and last onset.
	Span uint64
}

// Top returns the highest note of the chord.
func (c Chord) Top() uint8 {
	var top uint8
	for _, n := range c.Notes {
		if n > top {
			top = n
		}
	}
	return top
}
