package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ChannelOverride replaces selected fields of a built-in channel. Nil fields keep
// the built-in value.
type ChannelOverride struct {
	Name        *string   `mapstructure:"name"`
	MinBudget   *int64    `mapstructure:"min_budget"`
	MaxBudget   *int64    `mapstructure:"max_budget"`
	ExpectedCPC *float64  `mapstructure:"expected_cpc"`
	ExpectedCTR *float64  `mapstructure:"expected_ctr"`
	ExpectedCVR *float64  `mapstructure:"expected_cvr"`
	SetupCost   *int64    `mapstructure:"setup_cost"`
	RiskFactors []string  `mapstructure:"risk_factors"`
	BaseRisk    *float64  `mapstructure:"base_risk"`
	Seasonality []float64 `mapstructure:"seasonality"`
}

// Overrides is the content of a catalog override file.
type Overrides struct {
	Channels    map[string]ChannelOverride    `mapstructure:"channels"`
	Multipliers map[string]map[string]float64 `mapstructure:"multipliers"`
}

// LoadOverrides reads an override file (yaml, json or toml, by extension).
func LoadOverrides(path string) (Overrides, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Overrides{}, fmt.Errorf("failed to read catalog overrides %s: %w", path, err)
	}

	var o Overrides
	if err := v.Unmarshal(&o, decodeHook()); err != nil {
		return Overrides{}, fmt.Errorf("failed to decode catalog overrides %s: %w", path, err)
	}
	return o, nil
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// WithOverrides returns a new catalog with the overrides applied.
// The receiver is left untouched.
func (c *Catalog) WithOverrides(o Overrides) (*Catalog, error) {
	out := &Catalog{
		channels:    c.Channels(),
		multipliers: make(map[string]map[string]float64, len(c.multipliers)),
		seasonality: make(map[string][12]float64, len(c.seasonality)),
		baseRisks:   make(map[string]float64, len(c.baseRisks)),
		industries:  c.industries,
		benchmarks:  c.benchmarks,
	}
	for industry, table := range c.multipliers {
		copied := make(map[string]float64, len(table))
		for k, v := range table {
			copied[k] = v
		}
		out.multipliers[industry] = copied
	}
	for k, v := range c.seasonality {
		out.seasonality[k] = v
	}
	for k, v := range c.baseRisks {
		out.baseRisks[k] = v
	}
	out.reindex()

	ids := make([]string, 0, len(o.Channels))
	for id := range o.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		i, ok := out.index[id]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown channel %q", id))
			continue
		}
		ov := o.Channels[id]
		ch := &out.channels[i]
		applyChannelOverride(ch, ov)
		if err := validateChannel(*ch); err != nil {
			errs = append(errs, err)
		}
		if ov.BaseRisk != nil {
			if *ov.BaseRisk < 0 || *ov.BaseRisk > 1 {
				errs = append(errs, fmt.Errorf("channel %s: base_risk must be within [0,1]", id))
			}
			out.baseRisks[id] = *ov.BaseRisk
		}
		if ov.Seasonality != nil {
			if len(ov.Seasonality) != 12 {
				errs = append(errs, fmt.Errorf("channel %s: seasonality needs 12 values, got %d", id, len(ov.Seasonality)))
			} else {
				var curve [12]float64
				copy(curve[:], ov.Seasonality)
				out.seasonality[id] = curve
			}
		}
	}

	for industry, table := range o.Multipliers {
		if _, ok := out.industries[industry]; !ok {
			errs = append(errs, fmt.Errorf("multipliers: unknown industry %q", industry))
			continue
		}
		if out.multipliers[industry] == nil {
			out.multipliers[industry] = make(map[string]float64, len(table))
		}
		for channelID, m := range table {
			if _, ok := out.index[channelID]; !ok {
				errs = append(errs, fmt.Errorf("multipliers.%s: unknown channel %q", industry, channelID))
				continue
			}
			if m <= 0 {
				errs = append(errs, fmt.Errorf("multipliers.%s.%s must be positive", industry, channelID))
				continue
			}
			out.multipliers[industry][channelID] = m
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func applyChannelOverride(ch *MarketingChannel, ov ChannelOverride) {
	if ov.Name != nil {
		ch.Name = *ov.Name
	}
	if ov.MinBudget != nil {
		ch.MinBudget = *ov.MinBudget
	}
	if ov.MaxBudget != nil {
		ch.MaxBudget = *ov.MaxBudget
	}
	if ov.ExpectedCPC != nil {
		ch.ExpectedCPC = *ov.ExpectedCPC
	}
	if ov.ExpectedCTR != nil {
		ch.ExpectedCTR = *ov.ExpectedCTR
	}
	if ov.ExpectedCVR != nil {
		ch.ExpectedCVR = *ov.ExpectedCVR
	}
	if ov.SetupCost != nil {
		ch.SetupCost = *ov.SetupCost
	}
	if ov.RiskFactors != nil {
		ch.RiskFactors = ov.RiskFactors
	}
}

func validateChannel(ch MarketingChannel) error {
	switch {
	case ch.MinBudget < 0 || ch.MinBudget > ch.MaxBudget:
		return fmt.Errorf("channel %s: need 0 <= min_budget <= max_budget", ch.ID)
	case ch.ExpectedCPC < 0:
		return fmt.Errorf("channel %s: expected_cpc cannot be negative", ch.ID)
	case ch.ExpectedCTR <= 0 || ch.ExpectedCTR > 1:
		return fmt.Errorf("channel %s: expected_ctr must be within (0,1]", ch.ID)
	case ch.ExpectedCVR <= 0 || ch.ExpectedCVR > 1:
		return fmt.Errorf("channel %s: expected_cvr must be within (0,1]", ch.ID)
	case ch.SetupCost < 0:
		return fmt.Errorf("channel %s: setup_cost cannot be negative", ch.ID)
	}
	return nil
}
