package providers

import (
	"context"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CompoundProvider fetches Comet market rates. Compound's API reports APRs
// as decimal strings in percentage points.
type CompoundProvider struct {
	rest   restClient
	logger *zap.Logger
}

func NewCompoundProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *CompoundProvider {
	return &CompoundProvider{
		rest:   newRESTClient(baseURL, timeout, logger),
		logger: logger,
	}
}

func (p *CompoundProvider) Protocol() string { return domain.ProtocolCompound }

type compoundMarketsResponse struct {
	Markets []compoundMarket `json:"markets"`
}

type compoundMarket struct {
	ChainID         int64   `json:"chainId"`
	AssetAddress    string  `json:"assetAddress"`
	Symbol          string  `json:"symbol"`
	SupplyAPR       string  `json:"supplyApr"`
	BorrowAPR       string  `json:"borrowApr"`
	RewardSupplyAPR *string `json:"rewardSupplyApr"`
	RewardBorrowAPR *string `json:"rewardBorrowApr"`
}

func (p *CompoundProvider) FetchRates(ctx context.Context) ([]domain.MarketRate, error) {
	var payload compoundMarketsResponse
	if err := p.rest.getJSON(ctx, "/v1/markets", &payload); err != nil {
		return nil, err
	}

	rates := make([]domain.MarketRate, 0, len(payload.Markets))
	for _, market := range payload.Markets {
		supply, err := decimal.NewFromString(market.SupplyAPR)
		if err != nil {
			p.logger.Warn("skipping compound market with bad supply apr",
				zap.String("asset", market.AssetAddress),
				zap.Error(err),
			)
			continue
		}
		borrow, err := decimal.NewFromString(market.BorrowAPR)
		if err != nil {
			p.logger.Warn("skipping compound market with bad borrow apr",
				zap.String("asset", market.AssetAddress),
				zap.Error(err),
			)
			continue
		}

		rate := domain.MarketRate{
			Protocol:     domain.ProtocolCompound,
			ChainID:      market.ChainID,
			AssetAddress: market.AssetAddress,
			AssetSymbol:  market.Symbol,
			SupplyAPR:    supply,
			BorrowAPR:    borrow,
		}
		if reward := parseOptionalDecimal(market.RewardSupplyAPR); reward != nil {
			rate.RewardSupplyAPR = reward
		}
		if reward := parseOptionalDecimal(market.RewardBorrowAPR); reward != nil {
			rate.RewardBorrowAPR = reward
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func parseOptionalDecimal(raw *string) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil
	}
	return &value
}
