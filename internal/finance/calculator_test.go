package finance

import (
	"testing"

	"itscare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"150000", 150000},
		{"150,000", 150000},
		{"₩ 1,234,567원", 1234567},
		{"-5000", 5000}, // sign-less magnitudes only
		{"", 0},
		{"abc", 0},
		{"0", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseMoney(c.in), "input %q", c.in)
	}
}

func TestCommissionPolicy_ResolveRate(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("ExplicitRateWins", func(t *testing.T) {
		b := models.Booking{CommissionRate: "15.5", Contractor: models.ContractorIkkeulim}
		rate := policy.ResolveRate(b)
		require.NotNil(t, rate)
		assert.Equal(t, 15.5, *rate)
	})

	t.Run("ExplicitZeroIsNotUnspecified", func(t *testing.T) {
		b := models.Booking{CommissionRate: "0", Contractor: models.ContractorIkkeulim}
		rate := policy.ResolveRate(b)
		require.NotNil(t, rate)
		assert.Equal(t, 0.0, *rate)
	})

	t.Run("NoClamping", func(t *testing.T) {
		b := models.Booking{CommissionRate: "150"}
		rate := policy.ResolveRate(b)
		require.NotNil(t, rate)
		assert.Equal(t, 150.0, *rate)
	})

	t.Run("GarbageRateIsUndetermined", func(t *testing.T) {
		b := models.Booking{CommissionRate: "abc", Contractor: models.ContractorIkkeulim}
		assert.Nil(t, policy.ResolveRate(b))
	})

	t.Run("InHouseDefaultsToZero", func(t *testing.T) {
		b := models.Booking{Contractor: models.ContractorInHouse}
		rate := policy.ResolveRate(b)
		require.NotNil(t, rate)
		assert.Equal(t, 0.0, *rate)
	})

	t.Run("ReferralPartnerDefaultsToThirty", func(t *testing.T) {
		b := models.Booking{Contractor: models.ContractorIkkeulim}
		rate := policy.ResolveRate(b)
		require.NotNil(t, rate)
		assert.Equal(t, 30.0, *rate)
	})

	t.Run("UnknownContractorIsUndetermined", func(t *testing.T) {
		assert.Nil(t, policy.ResolveRate(models.Booking{Contractor: models.ContractorSamsung}))
		assert.Nil(t, policy.ResolveRate(models.Booking{Contractor: ""}))
	})
}

func TestCommissionPolicy_Calculate(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("ThirtyPercent", func(t *testing.T) {
		b := models.Booking{PriceTotal: "150000", CommissionRate: "30"}
		f := policy.Calculate(b)
		assert.Equal(t, int64(150000), f.Total)
		require.NotNil(t, f.Fee)
		require.NotNil(t, f.Net)
		assert.Equal(t, int64(45000), *f.Fee)
		assert.Equal(t, int64(105000), *f.Net)
	})

	t.Run("InHouseKeepsEverything", func(t *testing.T) {
		b := models.Booking{PriceTotal: "80,000", Contractor: models.ContractorInHouse}
		f := policy.Calculate(b)
		require.NotNil(t, f.Rate)
		assert.Equal(t, 0.0, *f.Rate)
		assert.Equal(t, int64(0), *f.Fee)
		assert.Equal(t, int64(80000), *f.Net)
	})

	t.Run("UndeterminedRateLeavesFeeNetNil", func(t *testing.T) {
		b := models.Booking{PriceTotal: "90000", Contractor: models.ContractorSamsung}
		f := policy.Calculate(b)
		assert.Equal(t, int64(90000), f.Total)
		assert.Nil(t, f.Rate)
		assert.Nil(t, f.Fee)
		assert.Nil(t, f.Net)
		assert.Equal(t, int64(0), f.NetOrZero())
	})

	t.Run("FeeRoundsHalfUp", func(t *testing.T) {
		// 10001 * 0.5% = 50.005 -> 50; 333 * 33.5% = 111.555 -> 112
		f := policy.Calculate(models.Booking{PriceTotal: "333", CommissionRate: "33.5"})
		require.NotNil(t, f.Fee)
		assert.Equal(t, int64(112), *f.Fee)
	})

	t.Run("RateOverHundredClampsNetAtZero", func(t *testing.T) {
		f := policy.Calculate(models.Booking{PriceTotal: "1000", CommissionRate: "150"})
		require.NotNil(t, f.Net)
		assert.Equal(t, int64(1500), *f.Fee)
		assert.Equal(t, int64(0), *f.Net)
	})

	t.Run("Deterministic", func(t *testing.T) {
		b := models.Booking{PriceTotal: "123,456", CommissionRate: "12.3"}
		first := policy.Calculate(b)
		second := policy.Calculate(b)
		assert.Equal(t, first.Total, second.Total)
		assert.Equal(t, *first.Fee, *second.Fee)
		assert.Equal(t, *first.Net, *second.Net)
	})
}
