package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"go.uber.org/zap"
)

func dispatchFixture() (domain.Alert, []domain.TriggerEvent) {
	alert := domain.Alert{
		ID:        1,
		Direction: domain.DirectionSupply,
		Frequency: domain.FrequencyDaily,
		Channels: []domain.DeliveryChannel{
			{ID: 1, Kind: domain.ChannelWebhook, Target: "https://hooks.example.com/a"},
		},
	}
	events := []domain.TriggerEvent{
		{
			AlertID: 1, ConditionID: 10, ConditionKind: domain.ConditionAPROutsideRange,
			Direction: domain.DirectionSupply, ChainID: 1, AssetAddress: usdcAddr,
			AssetSymbol: "USDC", Protocol: domain.ProtocolCompound,
			BenchmarkRate: dec("9.5"), ProtocolRate: dec("9.5"),
			Magnitude: dec("1.5"), Severity: domain.SeverityMedium,
		},
		{
			AlertID: 1, ConditionID: 11, ConditionKind: domain.ConditionRateDiffAbove,
			Direction: domain.DirectionSupply, ChainID: 1, AssetAddress: usdcAddr,
			AssetSymbol: "USDC", Protocol: "aave",
			BenchmarkRate: dec("3.0"), ProtocolRate: dec("4.6"),
			Magnitude: dec("1.6"), Severity: domain.SeverityMedium,
		},
	}
	return alert, events
}

func TestDispatcher_GroupsEventsIntoOneMessage(t *testing.T) {
	alert, events := dispatchFixture()
	store := newFakeNotificationStore()
	sink := &fakeSink{kind: domain.ChannelWebhook}
	dispatcher := NewDispatcher([]domain.NotificationSink{sink}, NewGate(store, zap.NewNop()), 2, zap.NewNop())

	result := dispatcher.Dispatch(context.Background(), []domain.Alert{alert}, events)

	if sink.callCount() != 1 {
		t.Fatalf("expected one delivery for one alert, got %d", sink.callCount())
	}
	msg := sink.calls[0].Message
	if !strings.Contains(msg.Body, "aave") || !strings.Contains(msg.Body, "compound") {
		t.Errorf("summary body missing breach lines: %q", msg.Body)
	}
	if !strings.Contains(msg.Subject, "2 conditions") {
		t.Errorf("subject should summarize both conditions: %q", msg.Subject)
	}
	if msg.Severity != domain.SeverityMedium {
		t.Errorf("message severity = %s, want MEDIUM", msg.Severity)
	}
	if result.AlertsNotified != 1 || result.ChannelSuccesses != 1 {
		t.Errorf("result = %+v, want 1 alert notified over 1 channel", result)
	}
	if result.EventsRecorded != 2 {
		t.Errorf("expected both events recorded, got %d", result.EventsRecorded)
	}
	if len(store.sent) != 2 {
		t.Errorf("store should hold 2 keys, has %d", len(store.sent))
	}
}

func TestDispatcher_PartialChannelSuccessCountsAsNotified(t *testing.T) {
	alert, events := dispatchFixture()
	alert.Channels = []domain.DeliveryChannel{
		{ID: 1, Kind: domain.ChannelWebhook, Target: "https://hooks.example.com/a"},
		{ID: 2, Kind: domain.ChannelEmail, Target: "ops@example.com"},
	}

	store := newFakeNotificationStore()
	webhook := &fakeSink{kind: domain.ChannelWebhook}
	email := &fakeSink{kind: domain.ChannelEmail, failAll: true}
	dispatcher := NewDispatcher([]domain.NotificationSink{webhook, email}, NewGate(store, zap.NewNop()), 2, zap.NewNop())

	result := dispatcher.Dispatch(context.Background(), []domain.Alert{alert}, events)

	if result.ChannelSuccesses != 1 || result.ChannelFailures != 1 {
		t.Fatalf("result = %+v, want 1 success and 1 failure", result)
	}
	if result.AlertsNotified != 1 {
		t.Error("partial success must count as notified")
	}
	if len(store.sent) != 2 {
		t.Errorf("partial success must still record the events, store has %d keys", len(store.sent))
	}
}

func TestDispatcher_AllChannelsFailedLeavesGateUnrecorded(t *testing.T) {
	alert, events := dispatchFixture()
	store := newFakeNotificationStore()
	sink := &fakeSink{kind: domain.ChannelWebhook, failAll: true}
	dispatcher := NewDispatcher([]domain.NotificationSink{sink}, NewGate(store, zap.NewNop()), 2, zap.NewNop())

	result := dispatcher.Dispatch(context.Background(), []domain.Alert{alert}, events)

	if result.AlertsNotified != 0 {
		t.Error("an alert whose every channel failed is not notified")
	}
	if len(store.sent) != 0 {
		t.Errorf("no events may be recorded after total failure, store has %d keys", len(store.sent))
	}
}

func TestDispatcher_UnknownChannelKindIsAFailure(t *testing.T) {
	alert, events := dispatchFixture()
	alert.Channels = []domain.DeliveryChannel{{ID: 1, Kind: domain.ChannelTelegram, Target: "12345"}}

	store := newFakeNotificationStore()
	dispatcher := NewDispatcher(nil, NewGate(store, zap.NewNop()), 2, zap.NewNop())

	result := dispatcher.Dispatch(context.Background(), []domain.Alert{alert}, events)

	if result.ChannelFailures != 1 || result.AlertsNotified != 0 {
		t.Fatalf("result = %+v, want the unroutable channel counted as a failure", result)
	}
	if len(store.sent) != 0 {
		t.Error("nothing may be recorded when no channel could be attempted")
	}
}

func TestDispatcher_IndependentAlerts(t *testing.T) {
	alertA, eventsA := dispatchFixture()
	alertB := alertA
	alertB.ID = 2
	eventB := eventsA[0]
	eventB.AlertID = 2

	store := newFakeNotificationStore()
	sink := &fakeSink{kind: domain.ChannelWebhook}
	dispatcher := NewDispatcher([]domain.NotificationSink{sink}, NewGate(store, zap.NewNop()), 2, zap.NewNop())

	result := dispatcher.Dispatch(context.Background(), []domain.Alert{alertA, alertB}, append(eventsA, eventB))

	if sink.callCount() != 2 {
		t.Fatalf("expected one delivery per alert, got %d", sink.callCount())
	}
	if result.AlertsNotified != 2 {
		t.Errorf("alerts notified = %d, want 2", result.AlertsNotified)
	}
}
