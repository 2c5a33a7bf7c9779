package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/ports"
)

// ReportSettings carries the engine configuration shared by all reports
type ReportSettings struct {
	// FallbackTable answers criticality-severity keys when a dataset has
	// no mapping artifact.
	FallbackTable domain.SLATable

	// MappingUnit is the unit of the external mapping's duration cells.
	MappingUnit domain.DurationUnit

	// WindowHours is the calendar-window denominator used when no month
	// filter selects a concrete month.
	WindowHours float64

	// TopN is the default ranking and occurrence depth.
	TopN int

	// Region is the location set behind the region filter.
	Region domain.LocationSet

	// CacheTTL bounds how stale a cached report may get.
	CacheTTL time.Duration
}

// ReportFilter narrows a report to a slice of the dataset
type ReportFilter struct {
	// Region restricts records to the configured regional location set
	Region bool `json:"region"`
	// Month restricts records to one "YYYY-MM" creation month
	Month string `json:"month,omitempty"`
}

func (f ReportFilter) cacheKey() string {
	return fmt.Sprintf("region=%t&month=%s", f.Region, f.Month)
}

// RecapRow is one criticality-severity line of the SLA recap
type RecapRow struct {
	Key      string   `json:"criticality_severity_key"`
	SLAHours *float64 `json:"sla_duration_hours,omitempty"`
	Tickets  int      `json:"tickets"`
	Achieved int      `json:"achieved"`
	Breached int      `json:"breached"`
	Open     int      `json:"open"`
	Unmapped int      `json:"unmapped"`
}

// RecapReport is the dataset-level SLA recap: outcome totals, the
// per-key breakdown, and the unmapped keys that need mapping attention
type RecapReport struct {
	DatasetID  string     `json:"dataset_id"`
	Filter     ReportFilter `json:"filter"`
	Tickets    int        `json:"tickets"`
	Achieved   int        `json:"achieved"`
	Breached   int        `json:"breached"`
	Open       int        `json:"open"`
	Unmapped   int        `json:"unmapped"`
	Excluded   int        `json:"excluded"`
	Compliance *float64   `json:"compliance_pct,omitempty"`
	Rows       []RecapRow `json:"rows"`

	// UnmappedKeys lists the distinct keys no SLA budget resolved for,
	// with their ticket counts, worst first.
	UnmappedKeys []domain.ValueCount `json:"unmapped_keys,omitempty"`

	// Degraded is set when the dataset carries a mapping artifact that
	// could not be loaded; every closed ticket then reports as unmapped.
	Degraded bool `json:"degraded,omitempty"`
}

// SummaryReport is a grouped SLA summary with compliance applied
type SummaryReport struct {
	DatasetID string                `json:"dataset_id"`
	GroupBy   domain.GroupKey       `json:"group_by"`
	Formula   domain.ComplianceFormula `json:"formula"`
	Filter    ReportFilter          `json:"filter"`
	Groups    []domain.GroupSummary `json:"groups"`
}

// RankingRequest selects the dimension and direction of a ranking
type RankingRequest struct {
	GroupBy domain.GroupKey          `json:"group_by"`
	Metric  domain.RankMetric        `json:"metric"`
	Formula domain.ComplianceFormula `json:"formula"`
	Best    bool                     `json:"best"`
	TopN    int                      `json:"top_n"`
	Filter  ReportFilter             `json:"filter"`
}

// RankingReport is a ranked leaderboard over one grouping dimension
type RankingReport struct {
	DatasetID string               `json:"dataset_id"`
	Request   RankingRequest       `json:"request"`
	Groups    []domain.RankedGroup `json:"groups"`
}

// MonthlyCompliance is one point of the monthly SLA trend
type MonthlyCompliance struct {
	Month      string   `json:"month"`
	Tickets    int      `json:"tickets"`
	Compliance *float64 `json:"compliance_pct,omitempty"`
}

// OverviewReport is the cross-dataset dashboard landing page
type OverviewReport struct {
	Datasets     int                       `json:"datasets"`
	Incidents    domain.VolumeSummary      `json:"incidents"`
	Requests     domain.VolumeSummary      `json:"requests"`
	Channels     []domain.ValueCount       `json:"channels"`
	ESSCount     int                       `json:"ess_count"`
	ESSShare     float64                   `json:"ess_share_pct"`
	Trend        []MonthlyCompliance       `json:"sla_trend"`
	StatusByType []domain.StatusBreakdown  `json:"status_by_type"`
	Occurrences  []domain.OccurrenceRow    `json:"top_occurrences"`
	WorstGroups  []domain.RankedGroup      `json:"worst_groups"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// ReportUseCase computes SLA reports over stored datasets. Reports are
// pure projections: every read re-evaluates the records, with an
// optional cache in front.
type ReportUseCase struct {
	datasetRepo ports.DatasetRepository
	cache       ports.ReportCache
	settings    ReportSettings
	logger      *logrus.Logger
}

// NewReportUseCase creates a new report use case
func NewReportUseCase(datasetRepo ports.DatasetRepository, cache ports.ReportCache, settings ReportSettings, logger *logrus.Logger) *ReportUseCase {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReportUseCase{
		datasetRepo: datasetRepo,
		cache:       cache,
		settings:    settings,
		logger:      logger,
	}
}

// Evaluations computes the per-ticket evaluation of a dataset
func (uc *ReportUseCase) Evaluations(ctx context.Context, datasetID string, filter ReportFilter) (*domain.Evaluation, error) {
	ev, _, err := uc.evaluate(ctx, datasetID, filter)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Recap computes the dataset-level SLA recap
func (uc *ReportUseCase) Recap(ctx context.Context, datasetID string, filter ReportFilter) (*RecapReport, error) {
	key := fmt.Sprintf("report:%s:recap:%s", datasetID, filter.cacheKey())
	var cached RecapReport
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	ev, degraded, err := uc.evaluate(ctx, datasetID, filter)
	if err != nil {
		return nil, err
	}

	report := &RecapReport{
		DatasetID: datasetID,
		Filter:    filter,
		Tickets:   ev.Total(),
		Excluded:  len(ev.Excluded),
		Degraded:  degraded,
	}

	rows := make(map[string]*RecapRow)
	unmapped := make(map[string]int)
	for _, et := range ev.Tickets {
		row, ok := rows[et.Key]
		if !ok {
			row = &RecapRow{Key: et.Key, SLAHours: et.SLAHours}
			rows[et.Key] = row
		} else if !equalHours(row.SLAHours, et.SLAHours) {
			// An external mapping can resolve the same key to a
			// different duration per item; the row then carries no
			// single budget.
			row.SLAHours = nil
		}
		row.Tickets++
		switch et.Outcome {
		case domain.OutcomeAchieved:
			report.Achieved++
			row.Achieved++
		case domain.OutcomeBreached:
			report.Breached++
			row.Breached++
		case domain.OutcomeOpen:
			report.Open++
			row.Open++
		case domain.OutcomeUnmapped:
			report.Unmapped++
			row.Unmapped++
			unmapped[et.Key]++
		}
	}

	for _, row := range rows {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Key < report.Rows[j].Key })

	for k, n := range unmapped {
		report.UnmappedKeys = append(report.UnmappedKeys, domain.ValueCount{Value: k, Count: n})
	}
	sort.Slice(report.UnmappedKeys, func(i, j int) bool {
		if report.UnmappedKeys[i].Count != report.UnmappedKeys[j].Count {
			return report.UnmappedKeys[i].Count > report.UnmappedKeys[j].Count
		}
		return report.UnmappedKeys[i].Value < report.UnmappedKeys[j].Value
	})

	if closed := report.Achieved + report.Breached; closed > 0 {
		c := float64(report.Achieved) / float64(closed) * 100
		report.Compliance = &c
	}

	uc.cacheSet(ctx, key, report)
	return report, nil
}

// Summaries computes a grouped SLA summary with the selected compliance formula
func (uc *ReportUseCase) Summaries(ctx context.Context, datasetID string, groupBy domain.GroupKey, formula domain.ComplianceFormula, filter ReportFilter) (*SummaryReport, error) {
	if !domain.ValidFormula(formula) {
		return nil, domain.ErrUnknownFormula
	}

	key := fmt.Sprintf("report:%s:summary:%s:%s:%s", datasetID, groupBy, formula, filter.cacheKey())
	var cached SummaryReport
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	ev, _, err := uc.evaluate(ctx, datasetID, filter)
	if err != nil {
		return nil, err
	}

	groups, err := domain.Aggregate(*ev, groupBy)
	if err != nil {
		return nil, err
	}

	if err := domain.ApplyCompliance(groups, formula, uc.windowHours(filter)); err != nil {
		return nil, err
	}

	report := &SummaryReport{
		DatasetID: datasetID,
		GroupBy:   groupBy,
		Formula:   formula,
		Filter:    filter,
		Groups:    groups,
	}
	uc.cacheSet(ctx, key, report)
	return report, nil
}

// Rankings computes a leaderboard over one grouping dimension
func (uc *ReportUseCase) Rankings(ctx context.Context, datasetID string, req RankingRequest) (*RankingReport, error) {
	if req.GroupBy == "" {
		req.GroupBy = domain.GroupByServiceOffering
	}
	if req.Metric == "" {
		req.Metric = domain.RankByCompliance
	}
	if req.Formula == "" {
		req.Formula = domain.FormulaTicketCount
	}
	if req.TopN <= 0 {
		req.TopN = uc.settings.TopN
	}
	if !domain.ValidRankMetric(req.Metric) {
		return nil, domain.ErrUnknownRankMetric
	}
	if !domain.ValidFormula(req.Formula) {
		return nil, domain.ErrUnknownFormula
	}

	key := fmt.Sprintf("report:%s:ranking:%s:%s:%s:%t:%d:%s",
		datasetID, req.GroupBy, req.Metric, req.Formula, req.Best, req.TopN, req.Filter.cacheKey())
	var cached RankingReport
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	ev, _, err := uc.evaluate(ctx, datasetID, req.Filter)
	if err != nil {
		return nil, err
	}

	groups, err := domain.Aggregate(*ev, req.GroupBy)
	if err != nil {
		return nil, err
	}

	window := uc.windowHours(req.Filter)
	if req.Metric == domain.RankByMaxBreach {
		err = domain.ApplyMaxBreachCompliance(groups, req.Formula, window)
	} else {
		err = domain.ApplyCompliance(groups, req.Formula, window)
	}
	if err != nil {
		return nil, err
	}

	ranked, err := domain.Rank(groups, req.Metric, req.Best, req.TopN)
	if err != nil {
		return nil, err
	}

	report := &RankingReport{DatasetID: datasetID, Request: req, Groups: ranked}
	uc.cacheSet(ctx, key, report)
	return report, nil
}

// Overview computes the cross-dataset dashboard overview
func (uc *ReportUseCase) Overview(ctx context.Context, filter ReportFilter) (*OverviewReport, error) {
	key := fmt.Sprintf("report:overview:%s", filter.cacheKey())
	var cached OverviewReport
	if uc.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	datasets, err := uc.datasetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	report := &OverviewReport{
		Datasets:    len(datasets),
		GeneratedAt: time.Now().UTC(),
	}

	var all []domain.TicketRecord
	var combined domain.Evaluation
	for _, ds := range datasets {
		records, err := uc.applyFilter(ds.Records, filter)
		if err != nil {
			return nil, err
		}

		switch ds.Class {
		case domain.TicketClassIncident:
			v := domain.Volume(records)
			report.Incidents.Total += v.Total
			report.Incidents.Solved += v.Solved
			report.Incidents.Active += v.Active
		case domain.TicketClassRequest:
			v := domain.Volume(records)
			report.Requests.Total += v.Total
			report.Requests.Solved += v.Solved
			report.Requests.Active += v.Active
		}
		all = append(all, records...)

		ev := domain.NewPipeline(uc.buildResolver(ds)).Run(records)
		combined.Tickets = append(combined.Tickets, ev.Tickets...)
		combined.Excluded = append(combined.Excluded, ev.Excluded...)
	}

	report.Channels, err = domain.CountValues(all, domain.GroupByChannel)
	if err != nil {
		return nil, err
	}
	report.ESSCount, report.ESSShare = domain.ESSShare(all)
	report.StatusByType = domain.StatusByType(all)
	report.Occurrences, err = domain.TopOccurrences(all, domain.GroupByServiceOffering, uc.settings.TopN)
	if err != nil {
		return nil, err
	}
	report.Trend = monthlyTrend(combined.Tickets)

	// Service offerings appearing in several datasets must merge into
	// one group, so the aggregation runs once over the combined
	// evaluation rather than per dataset.
	worst, err := domain.Aggregate(combined, domain.GroupByServiceOffering)
	if err != nil {
		return nil, err
	}
	if err := domain.ApplyMaxBreachCompliance(worst, domain.FormulaTicketCount, uc.settings.WindowHours); err != nil {
		return nil, err
	}
	report.WorstGroups, err = domain.Rank(worst, domain.RankByMaxBreach, false, uc.settings.TopN)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, key, report)
	return report, nil
}

// Helper functions

// evaluate loads a dataset, applies the filter and runs the SLA
// pipeline. The bool reports degraded mode: a stored mapping artifact
// that cannot be loaded anymore.
func (uc *ReportUseCase) evaluate(ctx context.Context, datasetID string, filter ReportFilter) (*domain.Evaluation, bool, error) {
	if datasetID == "" {
		return nil, false, fmt.Errorf("dataset ID is required")
	}

	dataset, err := uc.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get dataset: %w", err)
	}

	records, err := uc.applyFilter(dataset.Records, filter)
	if err != nil {
		return nil, false, err
	}

	resolver := uc.buildResolver(dataset)
	degraded := resolver == nil && dataset.Mapping != nil

	ev := domain.NewPipeline(resolver).Run(records)
	return &ev, degraded, nil
}

func (uc *ReportUseCase) applyFilter(records []domain.TicketRecord, filter ReportFilter) ([]domain.TicketRecord, error) {
	if filter.Month != "" {
		if _, err := time.Parse("2006-01", filter.Month); err != nil {
			return nil, domain.ErrInvalidMonth
		}
		records = domain.FilterByMonth(records, filter.Month)
	}
	if filter.Region {
		records = domain.FilterByLocation(records, uc.settings.Region)
	}
	return records, nil
}

// buildResolver picks the resolver for a dataset: the stored mapping
// artifact when present, the built-in table otherwise. A nil return
// means degraded mode and the pipeline reports closed tickets as
// unmapped rather than failing the request.
func (uc *ReportUseCase) buildResolver(dataset *domain.Dataset) *domain.Resolver {
	if dataset.Mapping != nil {
		r, err := domain.NewMappingResolver(dataset.Mapping, uc.settings.MappingUnit, nil)
		if err != nil {
			uc.logger.WithFields(logrus.Fields{
				"dataset_id": dataset.ID,
				"error":      err.Error(),
			}).Warn("stored mapping artifact unusable, reporting closed tickets as unmapped")
			return nil
		}
		return r
	}

	r, err := domain.NewTableResolver(uc.settings.FallbackTable)
	if err != nil {
		uc.logger.WithFields(logrus.Fields{
			"dataset_id": dataset.ID,
			"error":      err.Error(),
		}).Warn("built-in SLA table unusable, reporting closed tickets as unmapped")
		return nil
	}
	return r
}

// windowHours picks the calendar-window denominator: the filtered
// month's real hour count when a month is selected, the configured
// default otherwise.
func (uc *ReportUseCase) windowHours(filter ReportFilter) float64 {
	if filter.Month != "" {
		if hours, err := domain.HoursInMonth(filter.Month); err == nil {
			return hours
		}
	}
	return uc.settings.WindowHours
}

// monthlyTrend computes per-month ticket-count compliance over closed,
// mapped tickets, sorted by month.
func monthlyTrend(tickets []domain.EvaluatedTicket) []MonthlyCompliance {
	type bucket struct {
		tickets  int
		achieved int
		breached int
	}
	byMonth := make(map[string]*bucket)
	for _, et := range tickets {
		month := et.Record.Month()
		if month == "" {
			continue
		}
		b, ok := byMonth[month]
		if !ok {
			b = &bucket{}
			byMonth[month] = b
		}
		b.tickets++
		switch et.Outcome {
		case domain.OutcomeAchieved:
			b.achieved++
		case domain.OutcomeBreached:
			b.breached++
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyCompliance, 0, len(months))
	for _, m := range months {
		b := byMonth[m]
		mc := MonthlyCompliance{Month: m, Tickets: b.tickets}
		if closed := b.achieved + b.breached; closed > 0 {
			c := float64(b.achieved) / float64(closed) * 100
			mc.Compliance = &c
		}
		out = append(out, mc)
	}
	return out
}

func equalHours(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// cacheGet loads a cached report; cache failures read as misses
func (uc *ReportUseCase) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if uc.cache == nil {
		return false
	}
	hit, err := uc.cache.Get(ctx, key, v)
	if err != nil {
		uc.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Debug("report cache read failed")
		return false
	}
	return hit
}

// cacheSet stores a computed report; cache failures are logged only
func (uc *ReportUseCase) cacheSet(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, v, uc.settings.CacheTTL); err != nil {
		uc.logger.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Debug("report cache write failed")
	}
}
