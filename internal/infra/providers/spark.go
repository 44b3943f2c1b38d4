package providers

import (
	"context"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const protocolSpark = "spark"

// SparkProvider fetches market rates from the Spark lend API.
type SparkProvider struct {
	rest restClient
}

func NewSparkProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *SparkProvider {
	return &SparkProvider{rest: newRESTClient(baseURL, timeout, logger)}
}

func (p *SparkProvider) Protocol() string { return protocolSpark }

type sparkMarketsResponse struct {
	Markets []sparkMarket `json:"markets"`
}

type sparkMarket struct {
	ChainID   int64   `json:"chain_id"`
	Asset     string  `json:"asset"`
	Symbol    string  `json:"symbol"`
	SupplyAPY float64 `json:"supply_apy"`
	BorrowAPY float64 `json:"borrow_apy"`
}

func (p *SparkProvider) FetchRates(ctx context.Context) ([]domain.MarketRate, error) {
	var payload sparkMarketsResponse
	if err := p.rest.getJSON(ctx, "/v1/markets", &payload); err != nil {
		return nil, err
	}

	rates := make([]domain.MarketRate, 0, len(payload.Markets))
	for _, market := range payload.Markets {
		rates = append(rates, domain.MarketRate{
			Protocol:     protocolSpark,
			ChainID:      market.ChainID,
			AssetAddress: market.Asset,
			AssetSymbol:  market.Symbol,
			SupplyAPR:    decimal.NewFromFloat(market.SupplyAPY),
			BorrowAPR:    decimal.NewFromFloat(market.BorrowAPY),
		})
	}
	return rates, nil
}
