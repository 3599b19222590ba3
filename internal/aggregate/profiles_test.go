package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/domain"
)

var dexSet = domain.NewKnownAddressSet([]string{"0xpool", "0xrouter"})

func tr(from, to string, amount float64, ts int64) domain.TransferRecord {
	return domain.TransferRecord{
		FromAddress: from,
		ToAddress:   to,
		FromLower:   domain.NormalizeAddress(from),
		ToLower:     domain.NormalizeAddress(to),
		Amount:      amount,
		Timestamp:   ts,
		Chain:       domain.ChainEthereum,
	}
}

func TestBuildProfiles_Fold(t *testing.T) {
	t.Parallel()

	transfers := []domain.TransferRecord{
		tr("0xPool", "0xAlice", 1000, 100), // buy
		tr("0xBob", "0xAlice", 200, 50),    // wallet transfer in (earlier)
		tr("0xAlice", "0xRouter", 300, 200), // sell
		tr("0xAlice", "0xCarol", 100, 300),  // transfer out
		tr("0xPool", "0xRouter", 999, 400),  // dex-to-dex, skipped entirely
	}

	profiles := BuildProfiles(transfers, dexSet, nil)
	require.Len(t, profiles, 3)

	alice := profiles["0xalice"]
	require.NotNil(t, alice)
	assert.Equal(t, int64(50), alice.FirstSeen, "first-seen comes from the earliest inbound leg")
	assert.Equal(t, 1000.0, alice.TotalBought)
	assert.Equal(t, 200.0, alice.TotalReceived)
	assert.Equal(t, 300.0, alice.TotalSold)
	assert.Equal(t, 100.0, alice.TotalSent)
	assert.Equal(t, 800.0, alice.CurrentBalance, "estimated: acquired-sold-sent")
	assert.False(t, alice.BalanceIsExact)

	bob := profiles["0xbob"]
	require.NotNil(t, bob)
	assert.Zero(t, bob.FirstSeen, "sends do not establish first-seen")
	assert.Equal(t, 200.0, bob.TotalSent)

	carol := profiles["0xcarol"]
	require.NotNil(t, carol)
	assert.Equal(t, int64(300), carol.FirstSeen)
	assert.Equal(t, 100.0, carol.TotalReceived)
}

func TestBuildProfiles_AuthoritativeBalanceWins(t *testing.T) {
	t.Parallel()

	transfers := []domain.TransferRecord{
		tr("0xPool", "0xAlice", 1000, 100),
	}
	profiles := BuildProfiles(transfers, dexSet, map[string]float64{"0xalice": 750})

	assert.Equal(t, 750.0, profiles["0xalice"].CurrentBalance)
	assert.True(t, profiles["0xalice"].BalanceIsExact)
}

func TestBuildProfiles_EstimateClampedAtZero(t *testing.T) {
	t.Parallel()

	// wallet only observed selling: estimate would go negative
	transfers := []domain.TransferRecord{
		tr("0xAlice", "0xRouter", 500, 100),
	}
	profiles := BuildProfiles(transfers, dexSet, nil)
	assert.Equal(t, 0.0, profiles["0xalice"].CurrentBalance)
}

func TestBuildProfiles_BurnAddressExcluded(t *testing.T) {
	t.Parallel()

	transfers := []domain.TransferRecord{
		tr("0xAlice", domain.ZeroAddress, 500, 100),
		tr("0xAlice", domain.DeadAddress, 100, 200),
	}
	profiles := BuildProfiles(transfers, dexSet, nil)
	require.Len(t, profiles, 1)
	assert.Equal(t, 600.0, profiles["0xalice"].TotalSent)
}

func TestHoldingDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, HoldingDays(0, now))
	assert.Equal(t, 0, HoldingDays(now.Unix()+3600, now))
	assert.Equal(t, 45, HoldingDays(now.AddDate(0, 0, -45).Unix(), now))
}

func TestBehavior_DiamondHandsScenario(t *testing.T) {
	t.Parallel()

	now := time.Now()
	p := &domain.WalletProfile{
		Address:        "0xalice",
		Chain:          domain.ChainEthereum,
		FirstSeen:      now.AddDate(0, 0, -45).Unix(),
		TotalBought:    1000,
		CurrentBalance: 1000,
	}

	rec := Behavior(p, now)
	assert.Equal(t, domain.ArchetypeDiamondHands, rec.BehaviorType)
	assert.Equal(t, 100.0, rec.RetentionPct)
	assert.Equal(t, domain.AcquiredBought, rec.AcquisitionMethod)
	assert.Equal(t, 45, rec.HoldingDays)
	assert.Equal(t, "1-3m", rec.HoldingBucket)
}

func TestBehavior_ImmediateLiquidatorScenario(t *testing.T) {
	t.Parallel()

	now := time.Now()
	p := &domain.WalletProfile{
		Address:        "0xbob",
		Chain:          domain.ChainBase,
		FirstSeen:      now.AddDate(0, 0, -5).Unix(),
		TotalBought:    1000,
		TotalSold:      900,
		CurrentBalance: 100,
	}

	rec := Behavior(p, now)
	assert.Equal(t, domain.ArchetypeImmediateLiquidator, rec.BehaviorType)
	assert.Equal(t, "<7d", rec.HoldingBucket)
	assert.InDelta(t, 10.0, rec.RetentionPct, 1e-9)
}
