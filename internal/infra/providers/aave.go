package providers

import (
	"context"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const protocolAave = "aave"

// AaveProvider fetches reserve rates from the Aave v3 data API, which
// reports APRs as floats in percentage points.
type AaveProvider struct {
	rest restClient
}

func NewAaveProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *AaveProvider {
	return &AaveProvider{rest: newRESTClient(baseURL, timeout, logger)}
}

func (p *AaveProvider) Protocol() string { return protocolAave }

type aaveReservesResponse struct {
	Reserves []aaveReserve `json:"reserves"`
}

type aaveReserve struct {
	ChainID            int64    `json:"chain_id"`
	UnderlyingAsset    string   `json:"underlying_asset"`
	Symbol             string   `json:"symbol"`
	LiquidityRate      float64  `json:"liquidity_rate"`
	VariableBorrowRate float64  `json:"variable_borrow_rate"`
	IncentiveSupplyAPR *float64 `json:"incentive_supply_apr"`
	IncentiveBorrowAPR *float64 `json:"incentive_borrow_apr"`
}

func (p *AaveProvider) FetchRates(ctx context.Context) ([]domain.MarketRate, error) {
	var payload aaveReservesResponse
	if err := p.rest.getJSON(ctx, "/v3/reserves", &payload); err != nil {
		return nil, err
	}

	rates := make([]domain.MarketRate, 0, len(payload.Reserves))
	for _, reserve := range payload.Reserves {
		rate := domain.MarketRate{
			Protocol:     protocolAave,
			ChainID:      reserve.ChainID,
			AssetAddress: reserve.UnderlyingAsset,
			AssetSymbol:  reserve.Symbol,
			SupplyAPR:    decimal.NewFromFloat(reserve.LiquidityRate),
			BorrowAPR:    decimal.NewFromFloat(reserve.VariableBorrowRate),
		}
		if reserve.IncentiveSupplyAPR != nil {
			reward := decimal.NewFromFloat(*reserve.IncentiveSupplyAPR)
			rate.RewardSupplyAPR = &reward
		}
		if reserve.IncentiveBorrowAPR != nil {
			reward := decimal.NewFromFloat(*reserve.IncentiveBorrowAPR)
			rate.RewardBorrowAPR = &reward
		}
		rates = append(rates, rate)
	}
	return rates, nil
}
