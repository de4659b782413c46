package calls

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/exp/slices"
)

// SelectorLength describes the length of a function selector prefixing call data.
const SelectorLength = 4

// Call describes a single generated message to be executed against a deployed contract. It is immutable once
// produced, and is consumed exactly once by an execution harness.
type Call struct {
	// Sender represents the account address the call should be sent from.
	Sender common.Address

	// Target represents the receiving contract address for the call.
	Target common.Address

	// Value represents ETH value to be sent alongside the call. This is only non-zero for payable functions.
	Value *big.Int

	// Data represents the ABI-encoded call data (function selector followed by encoded arguments).
	Data []byte
}

// NewCall instantiates a new call from a given set of parameters, with call data set from bytes.
func NewCall(sender common.Address, target common.Address, value *big.Int, data []byte) *Call {
	return &Call{
		Sender: sender,
		Target: target,
		Value:  value,
		Data:   data,
	}
}

// NewCallFromAbiValues instantiates a new call whose data is packed from the given method and its input argument
// values, per standard ABI encoding. Returns the call, or an error if packing the arguments fails.
func NewCallFromAbiValues(sender common.Address, target common.Address, value *big.Int, method *abi.Method, args ...any) (*Call, error) {
	// Pack the input values per the method's argument definitions.
	packedArgs, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, err
	}

	// Prefix the packed arguments with the method's selector to form the complete call data.
	data := make([]byte, 0, SelectorLength+len(packedArgs))
	data = append(data, method.ID...)
	data = append(data, packedArgs...)
	return NewCall(sender, target, value, data), nil
}

// Selector returns the leading function selector of the call data. If the call data is shorter than a selector,
// a zero value is returned.
func (c *Call) Selector() [SelectorLength]byte {
	var selector [SelectorLength]byte
	if len(c.Data) >= SelectorLength {
		copy(selector[:], c.Data[:SelectorLength])
	}
	return selector
}

// Clone creates a copy of the given call and its underlying components.
func (c *Call) Clone() *Call {
	clone := &Call{
		Sender: c.Sender,
		Target: c.Target,
		Value:  nil,
		Data:   slices.Clone(c.Data),
	}
	if c.Value != nil {
		clone.Value = new(big.Int).Set(c.Value)
	}
	return clone
}

// callMarshaling is a structure that overrides field types during JSON marshaling, enabling hex-encoded serialization
// of binary call data and big integer values.
type callMarshaling struct {
	Sender common.Address `json:"sender"`
	Target common.Address `json:"target"`
	Value  *hexutil.Big   `json:"value"`
	Data   hexutil.Bytes  `json:"data"`
}

// MarshalJSON serializes the call into a hex-encoded JSON representation.
func (c *Call) MarshalJSON() ([]byte, error) {
	return json.Marshal(&callMarshaling{
		Sender: c.Sender,
		Target: c.Target,
		Value:  (*hexutil.Big)(c.Value),
		Data:   c.Data,
	})
}

// UnmarshalJSON deserializes a hex-encoded JSON representation into the call.
func (c *Call) UnmarshalJSON(data []byte) error {
	var dec callMarshaling
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	c.Sender = dec.Sender
	c.Target = dec.Target
	c.Value = (*big.Int)(dec.Value)
	c.Data = dec.Data
	return nil
}
