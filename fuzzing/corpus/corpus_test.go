package corpus

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// TestCorpusValueSetRoundTrip will test that a value set saved to a corpus database is reconstructed identically by
// a later load.
func TestCorpusValueSetRoundTrip(t *testing.T) {
	corpusPath := filepath.Join(t.TempDir(), "corpus.db")

	// Populate a value set with one item of each kind.
	valueSet := valuegeneration.NewValueSet()
	address := common.HexToAddress("0xdeadbeef")
	valueSet.AddAddress(address)
	valueSet.AddInteger(big.NewInt(-1337))
	valueSet.AddString("persisted")
	valueSet.AddBytes([]byte{1, 2, 3})

	// Open a corpus, persist the set, and close it.
	corpus, err := OpenCorpus(corpusPath)
	assert.NoError(t, err)
	err = corpus.SaveValueSet(valueSet)
	assert.NoError(t, err)
	err = corpus.Close()
	assert.NoError(t, err)

	// Re-open the corpus and load the set back.
	corpus, err = OpenCorpus(corpusPath)
	assert.NoError(t, err)
	defer corpus.Close()
	loaded, err := corpus.LoadValueSet()
	assert.NoError(t, err)

	// Verify each item survived the round trip, including the negative integer.
	assert.Equal(t, []common.Address{address}, loaded.Addresses())
	assert.Len(t, loaded.Integers(), 1)
	assert.Zero(t, loaded.Integers()[0].Cmp(big.NewInt(-1337)))
	assert.Equal(t, []string{"persisted"}, loaded.Strings())
	assert.Equal(t, [][]byte{{1, 2, 3}}, loaded.Bytes())
}

// TestCorpusLoadWithoutSnapshot will test that loading from a fresh corpus database yields an empty value set.
func TestCorpusLoadWithoutSnapshot(t *testing.T) {
	corpusPath := filepath.Join(t.TempDir(), "corpus.db")

	// Open a fresh corpus and load from it without saving anything first.
	corpus, err := OpenCorpus(corpusPath)
	assert.NoError(t, err)
	defer corpus.Close()

	loaded, err := corpus.LoadValueSet()
	assert.NoError(t, err)
	assert.Empty(t, loaded.Addresses())
	assert.Empty(t, loaded.Integers())
	assert.Empty(t, loaded.Strings())
	assert.Empty(t, loaded.Bytes())
}

// TestCorpusSaveReplacesSnapshot will test that a later save replaces the previously stored snapshot entirely.
func TestCorpusSaveReplacesSnapshot(t *testing.T) {
	corpusPath := filepath.Join(t.TempDir(), "corpus.db")
	corpus, err := OpenCorpus(corpusPath)
	assert.NoError(t, err)
	defer corpus.Close()

	// Save a first snapshot.
	first := valuegeneration.NewValueSet()
	first.AddString("first")
	assert.NoError(t, corpus.SaveValueSet(first))

	// Save a second snapshot with different contents.
	second := valuegeneration.NewValueSet()
	second.AddString("second")
	assert.NoError(t, corpus.SaveValueSet(second))

	// Verify only the second snapshot's contents load back.
	loaded, err := corpus.LoadValueSet()
	assert.NoError(t, err)
	assert.Equal(t, []string{"second"}, loaded.Strings())
}
