package fuzztests

import "testing"

const maxFuzzInput = 1 << 12

// seedPrograms are factory programs that reach every node kind and the
// depth-limit paths.
var seedPrograms = [][]byte{
	{},
	{0, 1, 1, 0, 2, 3},
	{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 3, 9, 2, 1, 7, 3, 0, 1, 2, 5, 5},
	{0, 4, 0, 5, 1, 0, 1, 3, 200, 2, 17, 1},
	{0, 6, 3, 4, 1, 1, 2, 2, 3, 3, 255, 0},
}

func addProgramSeeds(f *testing.F) {
	for _, p := range seedPrograms {
		f.Add(p)
	}
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return input
}
