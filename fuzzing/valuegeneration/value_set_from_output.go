package valuegeneration

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// AddAbiValuesFromOutput adds the output values of an executed contract call to the value set, so they become
// selectable by dictionary-biased generation on subsequent requests. This is intended to be invoked by the execution
// harness after each call it runs.
func (vs *ValueSet) AddAbiValuesFromOutput(outputTypes abi.Arguments, outputValues []any) {
	// Return early to be robust against mismatched lengths
	if len(outputTypes) != len(outputValues) {
		return
	}
	for i, outputType := range outputTypes {
		switch outputType.Type.T {
		case abi.AddressTy:
			address, ok := outputValues[i].(common.Address)
			if ok {
				vs.AddAddress(address)
				vs.AddBytes(address.Bytes())
			}
		case abi.UintTy, abi.IntTy:
			value, ok := outputValues[i].(*big.Int)
			if ok {
				vs.AddInteger(value)
				vs.AddAddress(common.BigToAddress(value))
			}
		case abi.StringTy:
			str, ok := outputValues[i].(string)
			if ok {
				vs.AddString(str)
			}
		case abi.BytesTy, abi.FixedBytesTy:
			b, ok := outputValues[i].([]byte)
			if ok {
				vs.AddBytes(b)
				vs.AddAddress(common.BytesToAddress(b))
			}
		}
	}
}
