package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func marketRate(protocol string, chainID int64, address, symbol, supply, borrow string) domain.MarketRate {
	return domain.MarketRate{
		Protocol:     protocol,
		ChainID:      chainID,
		AssetAddress: address,
		AssetSymbol:  symbol,
		SupplyAPR:    dec(supply),
		BorrowAPR:    dec(borrow),
	}
}

type fakeAlertRepo struct {
	alerts []domain.Alert
	err    error
}

func (f *fakeAlertRepo) ListActive(ctx context.Context) ([]domain.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.alerts, nil
}

// fakeNotificationStore mirrors the real repository's semantics: reads
// return the recorded time, and a second record within a minute of the
// first loses.
type fakeNotificationStore struct {
	mu        sync.Mutex
	sent      map[domain.NotificationKey]time.Time
	checkErr  error
	recordErr error
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{sent: make(map[domain.NotificationKey]time.Time)}
}

func (f *fakeNotificationStore) LastSentAt(ctx context.Context, key domain.NotificationKey) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	at, ok := f.sent[key]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func (f *fakeNotificationStore) RecordSent(ctx context.Context, key domain.NotificationKey, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return false, f.recordErr
	}
	if existing, ok := f.sent[key]; ok && at.Sub(existing) < time.Minute {
		return false, nil
	}
	f.sent[key] = at
	return true, nil
}

type sinkCall struct {
	Target  string
	Message domain.Message
}

type fakeSink struct {
	kind    domain.ChannelKind
	failAll bool

	mu    sync.Mutex
	calls []sinkCall
}

func (f *fakeSink) Kind() domain.ChannelKind { return f.kind }

func (f *fakeSink) Send(ctx context.Context, target string, msg domain.Message) error {
	f.mu.Lock()
	f.calls = append(f.calls, sinkCall{Target: target, Message: msg})
	f.mu.Unlock()
	if f.failAll {
		return context.DeadlineExceeded
	}
	return nil
}

func (f *fakeSink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type staticProvider struct {
	protocol string
	rates    []domain.MarketRate
	err      error
}

func (p *staticProvider) Protocol() string { return p.protocol }

func (p *staticProvider) FetchRates(ctx context.Context) ([]domain.MarketRate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.rates, nil
}
