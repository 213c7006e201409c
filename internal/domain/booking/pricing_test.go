package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStandardPricingStrategy_Quote(t *testing.T) {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	pricing := NewStandardPricingStrategy()

	tests := []struct {
		name        string
		rateCents   int64
		hours       time.Duration
		wantTotal   int64
		wantDeposit int64
	}{
		{
			name:      "whole days",
			rateCents: 10000,
			hours:     72 * time.Hour,
			wantTotal: 30000,
			// 20% of total < one day's rate, so the floor applies.
			wantDeposit: 10000,
		},
		{
			name:        "fractional day rounds up",
			rateCents:   10000,
			hours:       36 * time.Hour,
			wantTotal:   15000,
			wantDeposit: 10000,
		},
		{
			name:        "long rental uses percentage deposit",
			rateCents:   10000,
			hours:       30 * 24 * time.Hour,
			wantTotal:   300000,
			wantDeposit: 60000,
		},
		{
			name:        "sub-day rental still rounds up to a cent",
			rateCents:   9999,
			hours:       6 * time.Hour,
			wantTotal:   2500, // 9999 * 0.25 = 2499.75
			wantDeposit: 9999,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Period{Start: base, End: base.Add(tt.hours)}
			total, deposit := pricing.Quote(tt.rateCents, p)
			assert.Equal(t, tt.wantTotal, total)
			assert.Equal(t, tt.wantDeposit, deposit)
		})
	}
}
