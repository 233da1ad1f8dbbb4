// Package realtime analyzes live campaign metrics against a short rolling
// history and suggests corrective actions.
package realtime

import (
	"sync"
	"time"

	"github.com/aristath/mvt-analytics/pkg/formulas"
	"github.com/rs/zerolog"
)

// DefaultHistorySize caps the snapshots kept per session.
const DefaultHistorySize = 100

// DefaultSessionID is used when the caller does not name a session.
const DefaultSessionID = "default"

// trendWindow is the number of recent snapshots compared for trends.
const trendWindow = 3

// emaPeriod smooths ROI over the longer history.
const emaPeriod = 5

// Thresholds
const (
	LowROIThreshold  = 120.0
	HighCPAThreshold = 8000.0
)

// Recommendations
const (
	RecommendationLowROI    = "ROI is low: consider pausing low-efficiency keywords and audiences"
	RecommendationHighCPA   = "CPA is high: adjust bids or improve ad quality"
	RecommendationDeclining = "Performance is declining: review creatives and targeting"
)

// Trend directions
const (
	TrendInsufficientData = "insufficient_data"
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
)

// Urgency is how quickly the campaign needs attention.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Metrics is one snapshot of live campaign performance.
type Metrics struct {
	ROI     float64 `json:"roi"`
	CPA     float64 `json:"cpa"`
	CVR     float64 `json:"cvr"`
	Cost    float64 `json:"monthly_cost"`
	Revenue float64 `json:"monthly_revenue"`
}

// Snapshot is a timestamped metrics entry in a session history.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Metrics   Metrics   `json:"metrics"`
}

// Trends summarizes the recent direction of a session.
type Trends struct {
	Status           string   `json:"status,omitempty"`
	ROITrend         string   `json:"roi_trend,omitempty"`
	CostTrend        string   `json:"cost_trend,omitempty"`
	DataPoints       int      `json:"data_points"`
	ROIMovingAverage *float64 `json:"roi_moving_average,omitempty"`
	ROIExponential   *float64 `json:"roi_exponential_average,omitempty"`
}

// Analysis is the result of one AnalyzeRealtimePerformance call.
type Analysis struct {
	SessionID          string   `json:"session_id"`
	CurrentPerformance Metrics  `json:"current_performance"`
	Trends             Trends   `json:"trends"`
	Recommendations    []string `json:"recommendations"`
	Urgency            Urgency  `json:"urgency"`
}

// Analyzer keeps a bounded history per session. Safe for concurrent use.
type Analyzer struct {
	mu          sync.Mutex
	sessions    map[string][]Snapshot
	historySize int
	now         func() time.Time
	log         zerolog.Logger
}

// NewAnalyzer creates an analyzer keeping historySize snapshots per session.
func NewAnalyzer(historySize int, log zerolog.Logger) *Analyzer {
	if historySize < 2 {
		historySize = DefaultHistorySize
	}
	return &Analyzer{
		sessions:    make(map[string][]Snapshot),
		historySize: historySize,
		now:         time.Now,
		log:         log.With().Str("component", "realtime_analyzer").Logger(),
	}
}

// AnalyzeRealtimePerformance records metrics in the session history and
// returns trends, recommendations and urgency.
func (a *Analyzer) AnalyzeRealtimePerformance(sessionID string, metrics Metrics) Analysis {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	a.mu.Lock()
	history := append(a.sessions[sessionID], Snapshot{Timestamp: a.now().UTC(), Metrics: metrics})
	if len(history) > a.historySize {
		history = append([]Snapshot(nil), history[len(history)-a.historySize:]...)
	}
	a.sessions[sessionID] = history
	trends := analyzeTrends(history)
	a.mu.Unlock()

	analysis := Analysis{
		SessionID:          sessionID,
		CurrentPerformance: metrics,
		Trends:             trends,
		Recommendations:    Recommendations(metrics, trends),
		Urgency:            UrgencyFor(metrics.ROI),
	}

	a.log.Debug().
		Str("session_id", sessionID).
		Int("data_points", trends.DataPoints).
		Str("urgency", string(analysis.Urgency)).
		Msg("Realtime performance analyzed")

	return analysis
}

// History returns a copy of a session's snapshots, oldest first.
func (a *Analyzer) History(sessionID string) []Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Snapshot(nil), a.sessions[sessionID]...)
}

// Reset drops a session's history. It reports whether the session existed.
func (a *Analyzer) Reset(sessionID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.sessions[sessionID]
	delete(a.sessions, sessionID)
	return ok
}

// SessionCount returns the number of sessions with history.
func (a *Analyzer) SessionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

func analyzeTrends(history []Snapshot) Trends {
	if len(history) < 2 {
		return Trends{Status: TrendInsufficientData, DataPoints: len(history)}
	}

	recent := history[max(0, len(history)-trendWindow):]
	first, last := recent[0].Metrics, recent[len(recent)-1].Metrics

	trends := Trends{
		ROITrend:   TrendDeclining,
		CostTrend:  TrendDecreasing,
		DataPoints: len(history),
	}
	// equal values count as declining / decreasing
	if last.ROI > first.ROI {
		trends.ROITrend = TrendImproving
	}
	if last.Cost > first.Cost {
		trends.CostTrend = TrendIncreasing
	}

	rois := make([]float64, len(history))
	for i, s := range history {
		rois[i] = s.Metrics.ROI
	}
	if sma := formulas.SMA(rois, trendWindow); sma != nil {
		v := formulas.Round(*sma, 2)
		trends.ROIMovingAverage = &v
	}
	if ema := formulas.EMA(rois, emaPeriod); ema != nil {
		v := formulas.Round(*ema, 2)
		trends.ROIExponential = &v
	}
	return trends
}

// Recommendations returns the advice triggered by the metrics and trends.
func Recommendations(metrics Metrics, trends Trends) []string {
	recommendations := []string{}
	if metrics.ROI < LowROIThreshold {
		recommendations = append(recommendations, RecommendationLowROI)
	}
	if metrics.CPA > HighCPAThreshold {
		recommendations = append(recommendations, RecommendationHighCPA)
	}
	if trends.ROITrend == TrendDeclining {
		recommendations = append(recommendations, RecommendationDeclining)
	}
	return recommendations
}

// UrgencyFor maps the current ROI to an urgency level.
func UrgencyFor(roi float64) Urgency {
	switch {
	case roi < 100:
		return UrgencyCritical
	case roi < 130:
		return UrgencyHigh
	case roi < 180:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
