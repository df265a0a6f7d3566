package session

import "math/rand"

// ScrambleWord returns a display permutation of a word-scramble
// answer's characters. It is derived fresh each time the item is shown
// and never stored; the answer itself is not mutated. A shuffle that
// happens to equal the original ordering is accepted, not re-rolled.
func ScrambleWord(word string) string {
	runes := []rune(word)
	rand.Shuffle(len(runes), func(i, j int) {
		runes[i], runes[j] = runes[j], runes[i]
	})
	return string(runes)
}
