package corpus

import (
	"fmt"
	"math/big"
	"time"

	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/crytic/gorgon/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor"
	"go.etcd.io/bbolt"
)

// valuesBucket describes the database bucket under which value set snapshots are stored.
var valuesBucket = []byte("values")

// valueSetKey describes the database key under which the serialized value set snapshot is stored.
var valueSetKey = []byte("valueSet")

// Corpus persists the dictionary of observed values between runs, so a later campaign can seed its generation bias
// from values discovered by an earlier one.
type Corpus struct {
	// db describes the database the corpus is persisted to.
	db *bbolt.DB

	// logger describes the Corpus's log object that can be used to log important events
	logger *logging.Logger
}

// valueSetSnapshot describes the serialized form of a value set, suitable for CBOR encoding.
type valueSetSnapshot struct {
	Addresses [][]byte `cbor:"addresses"`
	Integers  []string `cbor:"integers"`
	Strings   []string `cbor:"strings"`
	Bytes     [][]byte `cbor:"bytes"`
}

// OpenCorpus opens a corpus database at the provided file path, creating it if it does not exist. Returns the
// corpus, or an error if one occurs.
func OpenCorpus(path string) (*Corpus, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open corpus database: %v", err)
	}

	// Create our bucket if it doesn't exist yet.
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(valuesBucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Corpus{
		db:     db,
		logger: logging.GlobalLogger.NewSubLogger("module", "corpus"),
	}, nil
}

// SaveValueSet serializes the provided value set and persists it to the corpus database, replacing any previously
// stored snapshot. Returns an error if one occurs.
func (c *Corpus) SaveValueSet(valueSet *valuegeneration.ValueSet) error {
	// Build a serializable snapshot from the value set.
	snapshot := valueSetSnapshot{}
	for _, address := range valueSet.Addresses() {
		snapshot.Addresses = append(snapshot.Addresses, address.Bytes())
	}
	for _, integer := range valueSet.Integers() {
		snapshot.Integers = append(snapshot.Integers, integer.String())
	}
	snapshot.Strings = valueSet.Strings()
	snapshot.Bytes = valueSet.Bytes()

	// Encode the snapshot and store it.
	encoded, err := cbor.Marshal(snapshot, cbor.EncOptions{})
	if err != nil {
		return fmt.Errorf("could not encode value set snapshot: %v", err)
	}
	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(valuesBucket).Put(valueSetKey, encoded)
	})
	if err != nil {
		return err
	}

	c.logger.Debug("persisted value set snapshot with ", len(snapshot.Addresses), " addresses and ", len(snapshot.Integers), " integers")
	return nil
}

// LoadValueSet reads the persisted value set snapshot from the corpus database and reconstructs a value set from
// it. If no snapshot was previously stored, an empty value set is returned. Returns an error if one occurs.
func (c *Corpus) LoadValueSet() (*valuegeneration.ValueSet, error) {
	// Fetch the stored snapshot, if any.
	var encoded []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(valuesBucket).Get(valueSetKey)
		if data != nil {
			encoded = make([]byte, len(data))
			copy(encoded, data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// If no snapshot exists, return a fresh value set.
	valueSet := valuegeneration.NewValueSet()
	if encoded == nil {
		return valueSet, nil
	}

	// Decode the snapshot and replay it into the value set.
	var snapshot valueSetSnapshot
	if err = cbor.Unmarshal(encoded, &snapshot); err != nil {
		return nil, fmt.Errorf("could not decode value set snapshot: %v", err)
	}
	for _, addressBytes := range snapshot.Addresses {
		valueSet.AddAddress(common.BytesToAddress(addressBytes))
	}
	for _, integerStr := range snapshot.Integers {
		integer, ok := new(big.Int).SetString(integerStr, 10)
		if !ok {
			return nil, fmt.Errorf("could not decode value set integer: %v", integerStr)
		}
		valueSet.AddInteger(integer)
	}
	for _, str := range snapshot.Strings {
		valueSet.AddString(str)
	}
	for _, b := range snapshot.Bytes {
		valueSet.AddBytes(b)
	}
	return valueSet, nil
}

// Close flushes and closes the underlying corpus database.
func (c *Corpus) Close() error {
	return c.db.Close()
}
