package prog

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nine-point-eight-p/flicker/prog/mocks"
)

// TestSpliceMutatorUsesCorpusRandom pins SpliceMutator's contract with
// CorpusProvider down to the exact call it makes, using a generated mock
// rather than a hand-rolled fake so the expectation is explicit about
// call count and arguments.
func TestSpliceMutatorUsesCorpusRandom(t *testing.T) {
	meta := testMetadata()
	rng := rand.New(rand.NewSource(7))
	gen := &Generator{MaxCalls: 4}
	seed := gen.Generate(rng, NewContext(meta))
	p := gen.Generate(rng, NewContext(meta))
	require.NotEmpty(t, p.Calls)

	cp := mocks.NewCorpusProvider(t)
	cp.On("Count").Return(1)
	cp.On("Random", rng).Return(seed).Once()

	_, err := SpliceMutator{}.Mutate(rng, meta, cp, 8, p)
	require.NoError(t, err)
}
