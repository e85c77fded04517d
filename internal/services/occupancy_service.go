package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/Comfie/property-crm-sub000/internal/repository"
	"github.com/Comfie/property-crm-sub000/pkg/logger"
)

// OccupancyService builds the occupancy and revenue report over a date
// window. Aggregation happens in memory over a reservation snapshot; the
// rendered report may be cached with a TTL, the underlying verdicts never are.
//
// Revenue is attributed in full to any reservation touching the window, even
// when only part of the stay falls inside it. Pro-rating at the window edges
// is a policy decision this report deliberately does not make.
type OccupancyService struct {
	propertyRepo repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	leaseRepo    repository.LeaseRepository
	cacheRepo    repository.ReportCacheRepository
	cacheTTL     time.Duration
}

// NewOccupancyService creates a new occupancy service
func NewOccupancyService(
	propertyRepo repository.PropertyRepository,
	bookingRepo repository.BookingRepository,
	leaseRepo repository.LeaseRepository,
	cacheRepo repository.ReportCacheRepository,
	cacheTTL time.Duration,
) *OccupancyService {
	return &OccupancyService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		leaseRepo:    leaseRepo,
		cacheRepo:    cacheRepo,
		cacheTTL:     cacheTTL,
	}
}

// GetOccupancyReport returns the report for the window, serving a cached copy
// when one is fresh. Pass no property ids for the whole portfolio.
func (s *OccupancyService) GetOccupancyReport(ctx context.Context, propertyIDs []uint, startDate, endDate time.Time) (*models.OccupancyReport, error) {
	start := models.DateOnly(startDate)
	end := models.DateOnly(endDate)
	key := occupancyCacheKey(propertyIDs, start, end)

	if cached, err := s.cacheRepo.Get(ctx, key); err == nil {
		var report models.OccupancyReport
		if err := json.Unmarshal(cached.Data, &report); err == nil {
			return &report, nil
		}
		// an unreadable entry is recomputed below and overwritten
	}

	report, err := s.AggregateOccupancy(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Set(ctx, key, report, s.cacheTTL); err != nil {
		logger.Warn("Failed to cache occupancy report", "key", key, "error", err)
	}

	return report, nil
}

// AggregateOccupancy computes the report without touching the cache.
//
// Per property, counted reservations are clipped to the window and to the
// listing start, merged into disjoint spans, and summed into occupied days.
// The summary re-derives the overall rate from the summed day totals rather
// than averaging per-property rates, so small properties cannot skew it.
func (s *OccupancyService) AggregateOccupancy(ctx context.Context, propertyIDs []uint, startDate, endDate time.Time) (*models.OccupancyReport, error) {
	start := models.DateOnly(startDate)
	end := models.DateOnly(endDate)

	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	properties, err := s.resolveProperties(ctx, propertyIDs)
	if err != nil {
		return nil, err
	}

	daysInRange := models.DaysBetween(start, end)

	ids := make([]uint, 0, len(properties))
	for i := range properties {
		ids = append(ids, properties[i].ID)
	}

	byProperty, err := s.loadReservations(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}

	occupiedByDay := make([]int, daysInRange)
	activeByDay := make([]int, daysInRange)

	results := make([]models.PropertyOccupancy, 0, len(properties))
	var sumOccupied, sumTotal int
	var sumRevenue float64

	for i := range properties {
		p := &properties[i]

		// The inventory for a property starts at its listing date, not at
		// the window start: days before listing are neither occupied nor
		// vacant.
		activeStart := start
		if p.ListedAt != nil {
			if listed := models.DateOnly(*p.ListedAt); listed.After(activeStart) {
				activeStart = listed
			}
		}
		totalDays := 0
		if end.After(activeStart) {
			totalDays = models.DaysBetween(activeStart, end)
		}

		reservations := byProperty[p.ID]
		merged := mergeIntervals(reservations, activeStart, end)

		occupiedDays := 0
		for _, iv := range merged {
			occupiedDays += models.DaysBetween(iv.start, iv.end)
			from := models.DaysBetween(start, iv.start)
			to := models.DaysBetween(start, iv.end)
			for d := from; d < to; d++ {
				occupiedByDay[d]++
			}
		}

		if totalDays > 0 {
			from := models.DaysBetween(start, activeStart)
			for d := from; d < daysInRange; d++ {
				activeByDay[d]++
			}
		}

		var revenue float64
		for _, r := range reservations {
			revenue += r.Revenue
		}

		metrics := models.OccupancyMetrics{
			OccupiedDays:     occupiedDays,
			VacantDays:       totalDays - occupiedDays,
			TotalDays:        totalDays,
			OccupancyRate:    OccupancyRate(occupiedDays, totalDays),
			TotalBookings:    len(reservations),
			TotalRevenue:     revenue,
			AverageDailyRate: AverageDailyRate(revenue, occupiedDays),
			RevPAR:           RevenuePerAvailableDay(revenue, totalDays),
		}
		results = append(results, models.PropertyOccupancy{
			Property: p.ToResponse(),
			Metrics:  metrics,
		})

		sumOccupied += occupiedDays
		sumTotal += totalDays
		sumRevenue += revenue
	}

	report := &models.OccupancyReport{
		Summary: models.OccupancySummary{
			TotalProperties:    len(properties),
			DaysInRange:        daysInRange,
			TotalAvailableDays: sumTotal,
			TotalOccupiedDays:  sumOccupied,
			OverallOccupancy:   OccupancyRate(sumOccupied, sumTotal),
			TotalRevenue:       sumRevenue,
		},
		ByProperty: results,
		Charts:     buildCharts(start, daysInRange, occupiedByDay, activeByDay),
	}
	return report, nil
}

// resolveProperties expands an empty id list to the active portfolio and
// rejects explicit ids that do not exist
func (s *OccupancyService) resolveProperties(ctx context.Context, propertyIDs []uint) ([]models.Property, error) {
	if len(propertyIDs) == 0 {
		properties, err := s.propertyRepo.FindAllActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("error al consultar propiedades: %w", err)
		}
		return properties, nil
	}

	unique := make(map[uint]struct{}, len(propertyIDs))
	for _, id := range propertyIDs {
		unique[id] = struct{}{}
	}

	properties, err := s.propertyRepo.FindByIDs(ctx, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("error al consultar propiedades: %w", err)
	}
	if len(properties) != len(unique) {
		return nil, ErrNotFound
	}
	return properties, nil
}

// loadReservations fetches bookings and leases touching the window and
// groups their projections by property, dropping cancelled and no-show stays
func (s *OccupancyService) loadReservations(ctx context.Context, propertyIDs []uint, start, end time.Time) (map[uint][]models.Reservation, error) {
	byProperty := make(map[uint][]models.Reservation)

	bookings, err := s.bookingRepo.FindInWindow(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("error al consultar reservas: %w", err)
	}
	for i := range bookings {
		r := bookings[i].ToReservation()
		if r.CountsForOccupancy() {
			byProperty[r.PropertyID] = append(byProperty[r.PropertyID], r)
		}
	}

	leases, err := s.leaseRepo.FindInWindow(ctx, propertyIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("error al consultar contratos de alquiler: %w", err)
	}
	for i := range leases {
		r := leases[i].ToReservation()
		if r.CountsForOccupancy() {
			byProperty[r.PropertyID] = append(byProperty[r.PropertyID], r)
		}
	}

	return byProperty, nil
}

// interval is a half-open [start, end) day span
type interval struct {
	start time.Time
	end   time.Time
}

// mergeIntervals clips each reservation to [clipStart, clipEnd) and merges
// the results into disjoint spans, so days covered by overlapping or
// back-to-back stays are counted once
func mergeIntervals(reservations []models.Reservation, clipStart, clipEnd time.Time) []interval {
	clipped := make([]interval, 0, len(reservations))
	for i := range reservations {
		r := &reservations[i]
		ivStart := r.StartDate
		if clipStart.After(ivStart) {
			ivStart = clipStart
		}
		ivEnd := r.EndDate
		if ivEnd.After(clipEnd) {
			ivEnd = clipEnd
		}
		if ivEnd.After(ivStart) {
			clipped = append(clipped, interval{start: ivStart, end: ivEnd})
		}
	}

	if len(clipped) == 0 {
		return clipped
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].start.Before(clipped[j].start)
	})

	merged := make([]interval, 0, len(clipped))
	merged = append(merged, clipped[0])
	for _, iv := range clipped[1:] {
		last := &merged[len(merged)-1]
		if iv.start.After(last.end) {
			merged = append(merged, iv)
			continue
		}
		if iv.end.After(last.end) {
			last.end = iv.end
		}
	}
	return merged
}

// buildCharts turns the day buckets into the daily series and the calendar
// month trend
func buildCharts(start time.Time, daysInRange int, occupiedByDay, activeByDay []int) models.OccupancyCharts {
	daily := make([]models.DailyOccupancyPoint, 0, daysInRange)
	trend := make([]models.MonthlyTrendPoint, 0)

	type monthAcc struct {
		occupied int
		total    int
	}
	monthOrder := make([]string, 0)
	months := make(map[string]*monthAcc)

	for i := 0; i < daysInRange; i++ {
		day := start.AddDate(0, 0, i)
		daily = append(daily, models.DailyOccupancyPoint{
			Date:     day.Format(models.DateLayout),
			Occupied: occupiedByDay[i],
			Total:    activeByDay[i],
			Rate:     OccupancyRate(occupiedByDay[i], activeByDay[i]),
		})

		// months follow the calendar, not 30-day buckets from the window start
		key := day.Format("2006-01")
		acc := months[key]
		if acc == nil {
			acc = &monthAcc{}
			months[key] = acc
			monthOrder = append(monthOrder, key)
		}
		acc.occupied += occupiedByDay[i]
		acc.total += activeByDay[i]
	}

	for _, key := range monthOrder {
		acc := months[key]
		trend = append(trend, models.MonthlyTrendPoint{
			Month:         key,
			OccupancyRate: OccupancyRate(acc.occupied, acc.total),
		})
	}

	return models.OccupancyCharts{
		DailyOccupancy: daily,
		MonthlyTrend:   trend,
	}
}

// occupancyCacheKey derives the cache key from the inputs that change the
// report
func occupancyCacheKey(propertyIDs []uint, start, end time.Time) string {
	scope := "all"
	if len(propertyIDs) > 0 {
		ids := make([]uint, len(propertyIDs))
		copy(ids, propertyIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatUint(uint64(id), 10)
		}
		scope = strings.Join(parts, ",")
	}
	return fmt.Sprintf("occupancy:%s:%s:%s", scope, start.Format(models.DateLayout), end.Format(models.DateLayout))
}

// InvalidateReports drops all cached reports. Booking and lease mutations
// call this so stale occupancy never outlives a data change.
func (s *OccupancyService) InvalidateReports(ctx context.Context) {
	if err := s.cacheRepo.InvalidateAll(ctx); err != nil {
		logger.Warn("Failed to invalidate report cache", "error", err)
	}
}

// RefreshDashboardCache recomputes and stores the month-to-date portfolio
// report, keeping the dashboard's default view warm
func (s *OccupancyService) RefreshDashboardCache(ctx context.Context) error {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	report, err := s.AggregateOccupancy(ctx, nil, start, end)
	if err != nil {
		return err
	}
	return s.cacheRepo.Set(ctx, occupancyCacheKey(nil, start, end), report, s.cacheTTL)
}

// CleanExpiredCache removes cache rows past their TTL
func (s *OccupancyService) CleanExpiredCache(ctx context.Context) error {
	return s.cacheRepo.CleanExpired(ctx)
}
