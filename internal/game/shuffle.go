package game

import "math/rand/v2"

// RandomShuffler shuffles with the process-wide random source.
func RandomShuffler() Shuffler {
	return func(letters []rune) {
		rand.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	}
}

// SeededShuffler shuffles deterministically from seed.
func SeededShuffler(seed uint64) Shuffler {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func(letters []rune) {
		r.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	}
}
