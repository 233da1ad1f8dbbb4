// Package catalog holds the static reference data shared by the analysis
// engines: marketing channels, industry multipliers, seasonal curves, base
// risks, industry market profiles and CPA benchmarks.
//
// A Catalog is built once at startup and never mutated afterwards, so it is
// safe to share between goroutines.
package catalog

import (
	"slices"
	"sort"
	"strings"
)

// Catalog is the immutable reference data set.
type Catalog struct {
	channels    []MarketingChannel
	index       map[string]int
	multipliers map[string]map[string]float64
	seasonality map[string][12]float64
	baseRisks   map[string]float64
	industries  map[string]IndustryProfile
	benchmarks  map[string]Benchmark
}

// New returns the built-in catalog.
func New() *Catalog {
	c := &Catalog{
		channels:    builtinChannels(),
		multipliers: builtinMultipliers,
		seasonality: builtinChannelSeasonality,
		baseRisks:   builtinBaseRisks,
		industries:  builtinIndustries,
		benchmarks:  make(map[string]Benchmark, len(builtinBenchmarks)),
	}
	for _, b := range builtinBenchmarks {
		c.benchmarks[benchmarkKey(b.Industry, b.Media)] = b
	}
	c.reindex()
	return c
}

func (c *Catalog) reindex() {
	c.index = make(map[string]int, len(c.channels))
	for i, ch := range c.channels {
		c.index[ch.ID] = i
	}
}

// Channels returns every channel in catalog order.
func (c *Catalog) Channels() []MarketingChannel {
	out := make([]MarketingChannel, len(c.channels))
	for i, ch := range c.channels {
		out[i] = cloneChannel(ch)
	}
	return out
}

// ChannelIDs returns every channel id in catalog order.
func (c *Catalog) ChannelIDs() []string {
	ids := make([]string, len(c.channels))
	for i, ch := range c.channels {
		ids[i] = ch.ID
	}
	return ids
}

// Channel looks up a channel by id.
func (c *Catalog) Channel(id string) (MarketingChannel, bool) {
	i, ok := c.index[id]
	if !ok {
		return MarketingChannel{}, false
	}
	return cloneChannel(c.channels[i]), true
}

// Resolve returns the known channels among ids, in catalog order.
// Unknown ids and duplicates are dropped.
func (c *Catalog) Resolve(ids []string) []MarketingChannel {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []MarketingChannel
	for _, ch := range c.channels {
		if wanted[ch.ID] {
			out = append(out, cloneChannel(ch))
		}
	}
	return out
}

// ResolveIndustry maps an industry id to the key used for reference data:
// the id itself when known, then its family prefix ("beauty_salon" -> "beauty"),
// then DefaultIndustry.
func (c *Catalog) ResolveIndustry(industry string) string {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if _, ok := c.industries[industry]; ok {
		return industry
	}
	if family, _, found := strings.Cut(industry, "_"); found {
		if _, ok := c.industries[family]; ok {
			return family
		}
	}
	return DefaultIndustry
}

// Multiplier returns the efficiency multiplier of a channel for an industry.
func (c *Catalog) Multiplier(industry, channelID string) float64 {
	table := c.multipliers[c.ResolveIndustry(industry)]
	if m, ok := table[channelID]; ok {
		return m
	}
	return 1.0
}

// ChannelSeasonal returns the seasonal factor of a channel for a month (1-based, wraps every 12).
func (c *Catalog) ChannelSeasonal(month int, channelID string) float64 {
	curve, ok := c.seasonality[channelID]
	if !ok {
		return 1.0
	}
	return curve[monthIndex(month)]
}

// BaseRisk returns the intrinsic risk of a channel.
func (c *Catalog) BaseRisk(channelID string) float64 {
	if r, ok := c.baseRisks[channelID]; ok {
		return r
	}
	return DefaultBaseRisk
}

// Industry returns the market profile of an industry, falling back to DefaultIndustry.
func (c *Catalog) Industry(industry string) IndustryProfile {
	return c.industries[c.ResolveIndustry(industry)]
}

// LookupIndustry returns the market profile of an exactly matching industry id.
func (c *Catalog) LookupIndustry(industry string) (IndustryProfile, bool) {
	p, ok := c.industries[industry]
	return p, ok
}

// IndustryIDs lists industries with market profiles, sorted.
func (c *Catalog) IndustryIDs() []string {
	ids := make([]string, 0, len(c.industries))
	for id := range c.industries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultBenchmark returns the built-in CPA benchmark for an industry/media pair,
// or GenericBenchmark.
func (c *Catalog) DefaultBenchmark(industry, media string) Benchmark {
	if b, ok := c.benchmarks[benchmarkKey(industry, media)]; ok {
		return b
	}
	b := GenericBenchmark
	b.Industry = industry
	b.Media = media
	return b
}

// Benchmarks returns all built-in CPA benchmarks.
func (c *Catalog) Benchmarks() []Benchmark {
	return slices.Clone(builtinBenchmarks)
}

// MediaTypes returns the media offered by the funnel simulator.
func (c *Catalog) MediaTypes() []MediaType {
	return slices.Clone(builtinMediaTypes)
}

// FunnelIndustries returns the industries offered by the funnel simulator.
func (c *Catalog) FunnelIndustries() []FunnelIndustry {
	return slices.Clone(builtinFunnelIndustries)
}

// RiskRegister returns the general business risk register.
func (c *Catalog) RiskRegister() []RiskFactor {
	return slices.Clone(builtinRiskRegister)
}

func benchmarkKey(industry, media string) string {
	return industry + "/" + media
}

func cloneChannel(ch MarketingChannel) MarketingChannel {
	ch.RiskFactors = slices.Clone(ch.RiskFactors)
	return ch
}
