package orders

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TWAP parts are tagged through the ui fee receiver address:
//
//	byte 0       0xff marker
//	bytes 1-2    zero
//	bytes 3-6    twap id
//	byte 7       number of parts
//	bytes 8-19   last 12 bytes of the real ui fee receiver
const twapMarker = 0xff

// TwapInfo groups the parts of a TWAP order.
type TwapInfo struct {
	IsTwap        bool   `json:"isTwap"`
	TwapID        string `json:"twapId,omitempty"`
	NumberOfParts int    `json:"numberOfParts,omitempty"`
}

// CreateTwapUIFeeReceiver tags uiFeeReceiver as part of TWAP twapID.
func CreateTwapUIFeeReceiver(uiFeeReceiver common.Address, twapID [4]byte, numberOfParts uint8) common.Address {
	var out common.Address
	out[0] = twapMarker
	copy(out[3:7], twapID[:])
	out[7] = numberOfParts
	copy(out[8:], uiFeeReceiver[8:])
	return out
}

// DecodeTwapUIFeeReceiver reads the TWAP tag back. Untagged receivers yield
// a zero TwapInfo.
func DecodeTwapUIFeeReceiver(uiFeeReceiver common.Address) TwapInfo {
	if uiFeeReceiver[0] != twapMarker || uiFeeReceiver[1] != 0 || uiFeeReceiver[2] != 0 || uiFeeReceiver[7] == 0 {
		return TwapInfo{}
	}
	return TwapInfo{
		IsTwap:        true,
		TwapID:        hexutil.Encode(uiFeeReceiver[3:7]),
		NumberOfParts: int(uiFeeReceiver[7]),
	}
}
