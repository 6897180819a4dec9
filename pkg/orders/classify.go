package orders

// IsMarketOrderType reports orders executed at the next oracle price.
func IsMarketOrderType(t OrderType) bool {
	return t == MarketSwap || t == MarketIncrease || t == MarketDecrease
}

// IsLimitOrderType reports limit swaps, limit increases and stop increases.
func IsLimitOrderType(t OrderType) bool {
	return t == LimitIncrease || t == LimitSwap || t == StopIncrease
}

// IsSwapOrderType reports market and limit swaps.
func IsSwapOrderType(t OrderType) bool {
	return t == MarketSwap || t == LimitSwap
}

// IsLimitSwapOrderType reports limit swaps.
func IsLimitSwapOrderType(t OrderType) bool {
	return t == LimitSwap
}

// IsIncreaseOrderType reports orders that open or grow a position.
func IsIncreaseOrderType(t OrderType) bool {
	return t == MarketIncrease || t == LimitIncrease || t == StopIncrease
}

// IsDecreaseOrderType reports orders that shrink or close a position.
func IsDecreaseOrderType(t OrderType) bool {
	return t == MarketDecrease || t == LimitDecrease || t == StopLossDecrease
}

// IsTriggerDecreaseOrderType reports take-profit and stop-loss decreases.
func IsTriggerDecreaseOrderType(t OrderType) bool {
	return t == LimitDecrease || t == StopLossDecrease
}

// IsLimitDecreaseOrderType reports take-profit decreases.
func IsLimitDecreaseOrderType(t OrderType) bool {
	return t == LimitDecrease
}

// IsStopLossOrderType reports stop-loss decreases.
func IsStopLossOrderType(t OrderType) bool {
	return t == StopLossDecrease
}

// IsLimitIncreaseOrderType reports limit increases.
func IsLimitIncreaseOrderType(t OrderType) bool {
	return t == LimitIncrease
}

// IsStopIncreaseOrderType reports stop increases.
func IsStopIncreaseOrderType(t OrderType) bool {
	return t == StopIncrease
}

// IsLiquidationOrderType reports keeper liquidations.
func IsLiquidationOrderType(t OrderType) bool {
	return t == Liquidation
}

// IsPositionOrderType reports orders that change a position.
func IsPositionOrderType(t OrderType) bool {
	return IsIncreaseOrderType(t) || IsDecreaseOrderType(t) || IsLiquidationOrderType(t)
}

// GetTriggerThresholdType returns the price comparison that fires a trigger
// order. ok is false for order types without a trigger price.
func GetTriggerThresholdType(t OrderType, isLong bool) (threshold TriggerThresholdType, ok bool) {
	switch t {
	case LimitIncrease:
		return pickThreshold(isLong, TriggerBelow, TriggerAbove), true
	case StopIncrease:
		return pickThreshold(isLong, TriggerAbove, TriggerBelow), true
	case LimitDecrease:
		return pickThreshold(isLong, TriggerAbove, TriggerBelow), true
	case StopLossDecrease:
		return pickThreshold(isLong, TriggerBelow, TriggerAbove), true
	default:
		return "", false
	}
}

func pickThreshold(isLong bool, long, short TriggerThresholdType) TriggerThresholdType {
	if isLong {
		return long
	}
	return short
}
