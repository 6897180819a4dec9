package positions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"perpsdk/pkg/fixedpoint"
	"perpsdk/pkg/markets"
	"perpsdk/pkg/tokens"
)

// Position is the raw state the position reader returns.
type Position struct {
	Account                common.Address `json:"account"`
	MarketAddress          common.Address `json:"marketAddress"`
	CollateralTokenAddress common.Address `json:"collateralTokenAddress"`
	IsLong                 bool           `json:"isLong"`

	SizeInUsd               *big.Int `json:"sizeInUsd"`
	SizeInTokens            *big.Int `json:"sizeInTokens"`
	CollateralAmount        *big.Int `json:"collateralAmount"`
	PendingBorrowingFeesUsd *big.Int `json:"pendingBorrowingFeesUsd"`
	PendingFundingFeesUsd   *big.Int `json:"pendingFundingFeesUsd"`
	PendingImpactAmount     *big.Int `json:"pendingImpactAmount"`
}

// Key returns the colon-joined key of the position.
func (p *Position) Key() string {
	return GetPositionKey(p.Account.Hex(), p.MarketAddress.Hex(), p.CollateralTokenAddress.Hex(), p.IsLong)
}

// InfoOptions carries account-level inputs to GetPositionInfo.
type InfoOptions struct {
	MinCollateralUsd  *big.Int
	Referral          *markets.ReferralInfo
	UIFeeFactor       *big.Int
	UseMaxPriceImpact bool
}

// PositionInfo is a position with its derived display values. Any derived
// field may be nil when it cannot be computed.
type PositionInfo struct {
	Position

	Key              string   `json:"key"`
	EntryPrice       *big.Int `json:"entryPrice"`
	MarkPrice        *big.Int `json:"markPrice"`
	CollateralUsd    *big.Int `json:"collateralUsd"`
	PnlUsd           *big.Int `json:"pnlUsd"`
	ClosingFeeUsd    *big.Int `json:"closingFeeUsd"`
	UIFeeUsd         *big.Int `json:"uiFeeUsd"`
	NetValueUsd      *big.Int `json:"netValueUsd"`
	Leverage         *big.Int `json:"leverage"`
	LiquidationPrice *big.Int `json:"liquidationPrice"`
}

// GetPositionInfo derives display values for pos. It returns nil when the
// market or collateral token is unknown.
func GetPositionInfo(pos *Position, marketsData markets.MarketsInfoData, tokensData tokens.TokensData, opts InfoOptions) *PositionInfo {
	if pos == nil {
		return nil
	}
	m := marketsData[pos.MarketAddress]
	collateralToken := tokens.GetTokenData(tokensData, pos.CollateralTokenAddress, tokens.ConvertNone)
	if m == nil || m.IndexToken == nil || collateralToken == nil {
		return nil
	}

	markPrice := tokens.GetMarkPrice(m.IndexToken.Prices, false, pos.IsLong)
	collateralUsd := fixedpoint.OrZero(tokens.ConvertToUsd(pos.CollateralAmount, collateralToken.Decimals, collateralToken.Prices.MinPrice))
	pnl := GetPositionPnlUsd(PnlParams{
		Market:       m,
		SizeInUsd:    fixedpoint.OrZero(pos.SizeInUsd),
		SizeInTokens: pos.SizeInTokens,
		MarkPrice:    markPrice,
		IsLong:       pos.IsLong,
	})
	fee := markets.GetPositionFee(m, fixedpoint.OrZero(pos.SizeInUsd), false, opts.Referral, opts.UIFeeFactor)

	info := &PositionInfo{
		Position:      *pos,
		Key:           pos.Key(),
		EntryPrice:    GetEntryPrice(pos.SizeInUsd, pos.SizeInTokens, m.IndexToken),
		MarkPrice:     markPrice,
		CollateralUsd: collateralUsd,
		PnlUsd:        pnl,
		ClosingFeeUsd: fee.PositionFeeUsd,
		UIFeeUsd:      fee.UIFeeUsd,
	}
	info.NetValueUsd = GetPositionNetValue(NetValueParams{
		CollateralUsd:           collateralUsd,
		PendingFundingFeesUsd:   pos.PendingFundingFeesUsd,
		PendingBorrowingFeesUsd: pos.PendingBorrowingFeesUsd,
		Pnl:                     pnl,
		ClosingFeeUsd:           fee.PositionFeeUsd,
		UIFeeUsd:                fee.UIFeeUsd,
	})
	info.Leverage = GetLeverage(LeverageParams{
		SizeInUsd:               pos.SizeInUsd,
		CollateralUsd:           collateralUsd,
		Pnl:                     pnl,
		PendingFundingFeesUsd:   pos.PendingFundingFeesUsd,
		PendingBorrowingFeesUsd: pos.PendingBorrowingFeesUsd,
	})
	info.LiquidationPrice = GetLiquidationPrice(LiquidationPriceParams{
		Market:                  m,
		CollateralToken:         collateralToken,
		SizeInUsd:               pos.SizeInUsd,
		SizeInTokens:            pos.SizeInTokens,
		CollateralAmount:        pos.CollateralAmount,
		CollateralUsd:           collateralUsd,
		PendingFundingFeesUsd:   pos.PendingFundingFeesUsd,
		PendingBorrowingFeesUsd: pos.PendingBorrowingFeesUsd,
		PendingImpactAmount:     pos.PendingImpactAmount,
		MinCollateralUsd:        opts.MinCollateralUsd,
		IsLong:                  pos.IsLong,
		UseMaxPriceImpact:       opts.UseMaxPriceImpact,
		Referral:                opts.Referral,
	})
	return info
}
