package ordertx

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vmihailenco/msgpack/v5"

	"perpsdk/pkg/fixedpoint"
)

// EncodeCall ABI-encodes one router call.
func EncodeCall(call Call) ([]byte, error) {
	if _, ok := RouterABI.Methods[call.Method]; !ok {
		return nil, fmt.Errorf("ordertx: unknown router method %q", call.Method)
	}
	data, err := RouterABI.Pack(call.Method, call.Params...)
	if err != nil {
		return nil, fmt.Errorf("ordertx: encode %s: %w", call.Method, err)
	}
	return data, nil
}

// EncodeCalls ABI-encodes every call of the payload, in order.
func EncodeCalls(payload MulticallPayload) ([][]byte, error) {
	encoded := make([][]byte, 0, len(payload.Calls))
	for i, call := range payload.Calls {
		data, err := EncodeCall(call)
		if err != nil {
			return nil, fmt.Errorf("ordertx: call %d: %w", i, err)
		}
		encoded = append(encoded, data)
	}
	return encoded, nil
}

// EncodeMulticall returns the calldata of multicall(bytes[]) wrapping payload.
func EncodeMulticall(payload MulticallPayload) ([]byte, error) {
	encoded, err := EncodeCalls(payload)
	if err != nil {
		return nil, err
	}
	data, err := RouterABI.Pack(MethodMulticall, encoded)
	if err != nil {
		return nil, fmt.Errorf("ordertx: encode multicall: %w", err)
	}
	return data, nil
}

type digestEnvelope struct {
	Calls [][]byte `msgpack:"calls"`
	Value string   `msgpack:"value"`
}

// Digest is keccak256 over a msgpack envelope of the encoded calls and value.
// Identical payloads yield identical digests.
func Digest(payload MulticallPayload) (common.Hash, error) {
	encoded, err := EncodeCalls(payload)
	if err != nil {
		return common.Hash{}, err
	}
	raw, err := msgpack.Marshal(digestEnvelope{
		Calls: encoded,
		Value: hexutil.EncodeBig(fixedpoint.OrZero(payload.Value)),
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("ordertx: msgpack encode payload: %w", err)
	}
	return crypto.Keccak256Hash(raw), nil
}
