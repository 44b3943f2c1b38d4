package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProtocolCompound is the benchmark protocol comparison conditions measure against.
const ProtocolCompound = "compound"

type RateDirection string

const (
	DirectionSupply RateDirection = "supply"
	DirectionBorrow RateDirection = "borrow"
)

// MarketRate is a point-in-time rate observation for one lending market.
// Never mutated after collection, only superseded by the next snapshot.
type MarketRate struct {
	Protocol        string
	ChainID         int64
	AssetAddress    string
	AssetSymbol     string
	SupplyAPR       decimal.Decimal
	BorrowAPR       decimal.Decimal
	RewardSupplyAPR *decimal.Decimal
	RewardBorrowAPR *decimal.Decimal
}

// APR returns the rate relevant to the given direction.
func (r MarketRate) APR(direction RateDirection) decimal.Decimal {
	if direction == DirectionBorrow {
		return r.BorrowAPR
	}
	return r.SupplyAPR
}

// RateKey identifies one market within a snapshot.
type RateKey struct {
	ChainID      int64
	AssetAddress string
	Protocol     string
}

// Snapshot is one complete, time-coherent set of rate observations.
// Iteration order is deterministic regardless of collection order.
type Snapshot struct {
	TakenAt time.Time

	rates map[RateKey]MarketRate
	keys  []RateKey
}

func NewSnapshot(takenAt time.Time, rates []MarketRate) *Snapshot {
	s := &Snapshot{
		TakenAt: takenAt,
		rates:   make(map[RateKey]MarketRate, len(rates)),
	}
	for _, r := range rates {
		key := RateKey{ChainID: r.ChainID, AssetAddress: NormalizeAddress(r.AssetAddress), Protocol: r.Protocol}
		if _, exists := s.rates[key]; !exists {
			s.keys = append(s.keys, key)
		}
		s.rates[key] = r
	}
	sort.Slice(s.keys, func(i, j int) bool {
		a, b := s.keys[i], s.keys[j]
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		if a.AssetAddress != b.AssetAddress {
			return a.AssetAddress < b.AssetAddress
		}
		return a.Protocol < b.Protocol
	})
	return s
}

func (s *Snapshot) Len() int {
	return len(s.keys)
}

// Rate looks up the observation for one (chain, asset, protocol) market.
func (s *Snapshot) Rate(chainID int64, assetAddress, protocol string) (MarketRate, bool) {
	r, ok := s.rates[RateKey{ChainID: chainID, AssetAddress: NormalizeAddress(assetAddress), Protocol: protocol}]
	return r, ok
}

// ProtocolsFor lists the protocols that have an observation for the given
// market, in deterministic order.
func (s *Snapshot) ProtocolsFor(chainID int64, assetAddress string) []string {
	addr := NormalizeAddress(assetAddress)
	var protocols []string
	for _, key := range s.keys {
		if key.ChainID == chainID && key.AssetAddress == addr {
			protocols = append(protocols, key.Protocol)
		}
	}
	return protocols
}

// MarketsFor lists every (chain, asset) pair the given protocol has an
// observation for, in deterministic order.
func (s *Snapshot) MarketsFor(protocol string) []Asset {
	var markets []Asset
	for _, key := range s.keys {
		if key.Protocol != protocol {
			continue
		}
		markets = append(markets, Asset{
			ChainID: key.ChainID,
			Address: key.AssetAddress,
			Symbol:  s.rates[key].AssetSymbol,
		})
	}
	return markets
}

// NormalizeAddress canonicalizes an asset address so the same market always
// produces the same snapshot and notification keys.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
