package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func obs(protocol string, chainID int64, address, symbol string, supply float64) MarketRate {
	return MarketRate{
		Protocol:     protocol,
		ChainID:      chainID,
		AssetAddress: address,
		AssetSymbol:  symbol,
		SupplyAPR:    decimal.NewFromFloat(supply),
		BorrowAPR:    decimal.NewFromFloat(supply + 1),
	}
}

func TestSnapshot_LookupNormalizesAddresses(t *testing.T) {
	snap := NewSnapshot(time.Now(), []MarketRate{
		obs(ProtocolCompound, 1, "0xABCDEF", "USDC", 3.0),
	})

	if _, ok := snap.Rate(1, "0xabcdef", ProtocolCompound); !ok {
		t.Error("lowercase lookup should find the rate")
	}
	if _, ok := snap.Rate(1, " 0xAbCdEf ", ProtocolCompound); !ok {
		t.Error("lookup should trim and case-fold the address")
	}
	if _, ok := snap.Rate(2, "0xabcdef", ProtocolCompound); ok {
		t.Error("a different chain must not match")
	}
}

func TestSnapshot_DeterministicIterationOrder(t *testing.T) {
	rates := []MarketRate{
		obs("spark", 137, "0xbb", "WETH", 2.0),
		obs(ProtocolCompound, 1, "0xaa", "USDC", 3.0),
		obs("aave", 1, "0xaa", "USDC", 4.0),
		obs(ProtocolCompound, 137, "0xbb", "WETH", 1.0),
	}
	first := NewSnapshot(time.Now(), rates)

	reversed := []MarketRate{rates[3], rates[2], rates[1], rates[0]}
	second := NewSnapshot(time.Now(), reversed)

	a := first.MarketsFor(ProtocolCompound)
	b := second.MarketsFor(ProtocolCompound)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected 2 compound markets, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("market order differs at %d: %+v vs %+v", i, a[i], b[i])
		}
	}

	protocols := first.ProtocolsFor(1, "0xaa")
	if len(protocols) != 2 || protocols[0] != "aave" || protocols[1] != ProtocolCompound {
		t.Errorf("protocols = %v, want [aave compound]", protocols)
	}
}

func TestSnapshot_DuplicateObservationsLastWins(t *testing.T) {
	snap := NewSnapshot(time.Now(), []MarketRate{
		obs(ProtocolCompound, 1, "0xaa", "USDC", 3.0),
		obs(ProtocolCompound, 1, "0xAA", "USDC", 5.0),
	})

	if snap.Len() != 1 {
		t.Fatalf("duplicate key should collapse, got %d entries", snap.Len())
	}
	rate, _ := snap.Rate(1, "0xaa", ProtocolCompound)
	if !rate.SupplyAPR.Equal(decimal.NewFromFloat(5.0)) {
		t.Errorf("supply apr = %s, want the later observation 5", rate.SupplyAPR)
	}
}

func TestMarketRate_APRByDirection(t *testing.T) {
	rate := obs(ProtocolCompound, 1, "0xaa", "USDC", 3.0)
	if !rate.APR(DirectionSupply).Equal(rate.SupplyAPR) {
		t.Error("supply direction should read the supply APR")
	}
	if !rate.APR(DirectionBorrow).Equal(rate.BorrowAPR) {
		t.Error("borrow direction should read the borrow APR")
	}
}
