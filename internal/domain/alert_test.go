package domain

import (
	"testing"
	"time"
)

func TestFrequency_Cooldown(t *testing.T) {
	cases := []struct {
		frequency Frequency
		want      time.Duration
	}{
		{FrequencyImmediate, 0},
		{FrequencyHourly, time.Hour},
		{FrequencyDaily, 24 * time.Hour},
		{FrequencyWeekly, 7 * 24 * time.Hour},
		{Frequency("BOGUS"), 24 * time.Hour},
	}

	for _, tc := range cases {
		if got := tc.frequency.Cooldown(); got != tc.want {
			t.Errorf("Cooldown(%s) = %s, want %s", tc.frequency, got, tc.want)
		}
	}
}

func TestAlert_WatchesChain(t *testing.T) {
	t.Run("empty selection watches everything", func(t *testing.T) {
		alert := Alert{}
		if !alert.WatchesChain(1) || !alert.WatchesChain(42161) {
			t.Error("empty chain selection should match any chain")
		}
	})

	t.Run("explicit selection is exclusive", func(t *testing.T) {
		alert := Alert{Chains: []int64{1, 137}}
		if !alert.WatchesChain(137) {
			t.Error("selected chain should match")
		}
		if alert.WatchesChain(10) {
			t.Error("unselected chain should not match")
		}
	})
}

func TestTriggerEvent_KeyNormalizesAddress(t *testing.T) {
	event := TriggerEvent{
		AlertID:      1,
		ConditionID:  2,
		ChainID:      1,
		AssetAddress: "0xABCdef",
		Protocol:     ProtocolCompound,
	}
	if event.Key().AssetAddress != "0xabcdef" {
		t.Errorf("key address = %s, want normalized 0xabcdef", event.Key().AssetAddress)
	}
}
