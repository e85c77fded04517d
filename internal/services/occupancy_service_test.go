package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Comfie/property-crm-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func occupancyFixture(cache *mockReportCache) (*OccupancyService, *mockPropertyRepo, *mockBookingRepo, *mockLeaseRepo) {
	propertyRepo := &mockPropertyRepo{}
	bookingRepo := &mockBookingRepo{}
	leaseRepo := &mockLeaseRepo{}
	if cache == nil {
		cache = &mockReportCache{}
	}
	svc := NewOccupancyService(propertyRepo, bookingRepo, leaseRepo, cache, 15*time.Minute)
	return svc, propertyRepo, bookingRepo, leaseRepo
}

func singleProperty(p models.Property) func(ctx context.Context, ids []uint) ([]models.Property, error) {
	return func(ctx context.Context, ids []uint) ([]models.Property, error) {
		return []models.Property{p}, nil
	}
}

func TestAggregateOccupancy_EmptyWindow(t *testing.T) {
	svc, propertyRepo, _, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Name: "Casa Marina", Status: models.PropertyStatusActive})

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	// A property with no reservations is 30 vacant days, not a division error
	assert.Len(t, report.ByProperty, 1)
	m := report.ByProperty[0].Metrics
	assert.Equal(t, 0, m.OccupiedDays)
	assert.Equal(t, 30, m.VacantDays)
	assert.Equal(t, 30, m.TotalDays)
	assert.Equal(t, 0.0, m.OccupancyRate)
	assert.Equal(t, 0.0, m.AverageDailyRate)
	assert.Equal(t, 0.0, m.RevPAR)

	assert.Equal(t, 1, report.Summary.TotalProperties)
	assert.Equal(t, 30, report.Summary.DaysInRange)
	assert.Equal(t, 30, report.Summary.TotalAvailableDays)
	assert.Equal(t, 0, report.Summary.TotalOccupiedDays)
	assert.Equal(t, 0.0, report.Summary.OverallOccupancy)

	assert.Len(t, report.Charts.DailyOccupancy, 30)
	assert.Equal(t, "2026-03-01", report.Charts.DailyOccupancy[0].Date)
	assert.Equal(t, 1, report.Charts.DailyOccupancy[0].Total)
	assert.Len(t, report.Charts.MonthlyTrend, 1)
	assert.Equal(t, "2026-03", report.Charts.MonthlyTrend[0].Month)
}

func TestAggregateOccupancy_MergedStaysAndMetrics(t *testing.T) {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Name: "Casa Marina", Status: models.PropertyStatusActive})

	// Two stays overlap (the second was force-booked over the first), so
	// their shared days must count once
	bookingRepo.mockFindInWindow = func(ctx context.Context, ids []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: 4, CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 14), Status: models.BookingStatusCheckedOut, TotalAmount: 3000},
			{ID: 2, PropertyID: 4, CheckInDate: day(2026, 3, 12), CheckOutDate: day(2026, 3, 16), Status: models.BookingStatusConfirmed, TotalAmount: 2000},
		}, nil
	}

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	m := report.ByProperty[0].Metrics
	// [10,14) and [12,16) merge into [10,16): 6 days, not 8
	assert.Equal(t, 6, m.OccupiedDays)
	assert.Equal(t, 24, m.VacantDays)
	assert.Equal(t, 30, m.TotalDays)
	assert.Equal(t, m.TotalDays, m.OccupiedDays+m.VacantDays)
	assert.Equal(t, 2, m.TotalBookings)
	assert.Equal(t, 5000.0, m.TotalRevenue)
	// 6/30 occupied, rounded to one decimal
	assert.Equal(t, 20.0, m.OccupancyRate)
	// ADR = 5000 / 6 occupied days
	assert.InDelta(t, 833.33, m.AverageDailyRate, 0.01)
	// RevPAR = 5000 / 30 available days
	assert.InDelta(t, 166.67, m.RevPAR, 0.01)

	// The overlapped day shows one occupied unit in the daily chart too
	mar12 := report.Charts.DailyOccupancy[11]
	assert.Equal(t, "2026-03-12", mar12.Date)
	assert.Equal(t, 1, mar12.Occupied)
}

func TestAggregateOccupancy_ClipsToWindowKeepsFullRevenue(t *testing.T) {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})

	// Stay started back in February; only its March days occupy the window
	// but its revenue counts in full. Edge pro-rating is a policy this report
	// does not do.
	bookingRepo.mockFindInWindow = func(ctx context.Context, ids []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: 4, CheckInDate: day(2026, 2, 20), CheckOutDate: day(2026, 3, 5), Status: models.BookingStatusCheckedOut, TotalAmount: 7000},
		}, nil
	}

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	m := report.ByProperty[0].Metrics
	assert.Equal(t, 4, m.OccupiedDays)
	assert.Equal(t, 7000.0, m.TotalRevenue)
	assert.InDelta(t, 1750.0, m.AverageDailyRate, 0.01)
}

func TestAggregateOccupancy_ListingStartClipsInventory(t *testing.T) {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)

	listedAt := day(2026, 3, 16)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive, ListedAt: &listedAt})

	bookingRepo.mockFindInWindow = func(ctx context.Context, ids []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: 4, CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 20), Status: models.BookingStatusConfirmed, TotalAmount: 1200},
		}, nil
	}

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	// Days before the listing date are neither occupied nor vacant
	m := report.ByProperty[0].Metrics
	assert.Equal(t, 15, m.TotalDays)
	assert.Equal(t, 4, m.OccupiedDays) // [16,20) of the [10,20) stay
	assert.Equal(t, 11, m.VacantDays)
	assert.Equal(t, 26.7, m.OccupancyRate)

	// The daily chart has no inventory before the listing date
	assert.Equal(t, 0, report.Charts.DailyOccupancy[0].Total)
	assert.Equal(t, 1, report.Charts.DailyOccupancy[15].Total)
	assert.Equal(t, 15, report.Summary.TotalAvailableDays)
}

func TestAggregateOccupancy_SummaryDerivedFromDayTotals(t *testing.T) {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)

	// P1 lists late and is fully booked (100%), P2 sits empty all month (0%).
	// Averaging the rates would claim 50%; the summary must say 10/40.
	listedAt := day(2026, 3, 21)
	propertyRepo.mockFindByIDs = func(ctx context.Context, ids []uint) ([]models.Property, error) {
		return []models.Property{
			{ID: 1, Status: models.PropertyStatusActive, ListedAt: &listedAt},
			{ID: 2, Status: models.PropertyStatusActive},
		}, nil
	}
	bookingRepo.mockFindInWindow = func(ctx context.Context, ids []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: 1, CheckInDate: day(2026, 3, 21), CheckOutDate: day(2026, 3, 31), Status: models.BookingStatusConfirmed, TotalAmount: 8000},
		}, nil
	}

	report, err := svc.AggregateOccupancy(context.Background(), []uint{1, 2}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	assert.Equal(t, 100.0, report.ByProperty[0].Metrics.OccupancyRate)
	assert.Equal(t, 0.0, report.ByProperty[1].Metrics.OccupancyRate)
	assert.Equal(t, 40, report.Summary.TotalAvailableDays)
	assert.Equal(t, 10, report.Summary.TotalOccupiedDays)
	assert.Equal(t, 25.0, report.Summary.OverallOccupancy)
}

func TestAggregateOccupancy_CancelledAndNoShowInvisible(t *testing.T) {
	svc, propertyRepo, bookingRepo, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})

	bookingRepo.mockFindInWindow = func(ctx context.Context, ids []uint, start, end time.Time) ([]models.Booking, error) {
		return []models.Booking{
			{ID: 1, PropertyID: 4, CheckInDate: day(2026, 3, 10), CheckOutDate: day(2026, 3, 14), Status: models.BookingStatusCancelled, TotalAmount: 3000},
			{ID: 2, PropertyID: 4, CheckInDate: day(2026, 3, 20), CheckOutDate: day(2026, 3, 24), Status: models.BookingStatusNoShow, TotalAmount: 2500},
		}, nil
	}

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)

	m := report.ByProperty[0].Metrics
	assert.Equal(t, 0, m.OccupiedDays)
	assert.Equal(t, 0, m.TotalBookings)
	assert.Equal(t, 0.0, m.TotalRevenue)
}

func TestAggregateOccupancy_MonthlyTrendFollowsCalendar(t *testing.T) {
	svc, propertyRepo, _, _ := occupancyFixture(nil)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})

	report, err := svc.AggregateOccupancy(context.Background(), []uint{4}, day(2026, 1, 25), day(2026, 2, 5))
	assert.NoError(t, err)

	// A window straddling a month boundary splits on the calendar, not into
	// 30-day buckets from the window start
	assert.Len(t, report.Charts.MonthlyTrend, 2)
	assert.Equal(t, "2026-01", report.Charts.MonthlyTrend[0].Month)
	assert.Equal(t, "2026-02", report.Charts.MonthlyTrend[1].Month)
	assert.Len(t, report.Charts.DailyOccupancy, 11)
}

func TestAggregateOccupancy_BadInput(t *testing.T) {
	svc, propertyRepo, _, _ := occupancyFixture(nil)

	_, err := svc.AggregateOccupancy(context.Background(), nil, day(2026, 3, 10), day(2026, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Asking for a property that does not exist is an error, not an empty row
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})
	_, err = svc.AggregateOccupancy(context.Background(), []uint{4, 99}, day(2026, 3, 1), day(2026, 3, 31))
	assert.ErrorIs(t, err, ErrNotFound)

	// Duplicate ids are deduplicated before the existence check
	report, err := svc.AggregateOccupancy(context.Background(), []uint{4, 4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalProperties)
}

func TestGetOccupancyReport_CachesResult(t *testing.T) {
	cache := &mockReportCache{}
	svc, propertyRepo, _, _ := occupancyFixture(cache)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})

	report, err := svc.GetOccupancyReport(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalProperties)

	// The computed report was stored under the derived key
	assert.Equal(t, []string{"occupancy:4:2026-03-01:2026-03-31"}, cache.setKeys)
}

func TestGetOccupancyReport_ServesFreshCache(t *testing.T) {
	cached := &models.OccupancyReport{Summary: models.OccupancySummary{TotalProperties: 42}}
	data, err := json.Marshal(cached)
	assert.NoError(t, err)

	cache := &mockReportCache{}
	cache.mockGet = func(ctx context.Context, key string) (*models.ReportCache, error) {
		return &models.ReportCache{CacheKey: key, Data: datatypes.JSON(data)}, nil
	}

	svc, propertyRepo, _, _ := occupancyFixture(cache)
	recomputed := false
	propertyRepo.mockFindByIDs = func(ctx context.Context, ids []uint) ([]models.Property, error) {
		recomputed = true
		return []models.Property{}, nil
	}

	report, err := svc.GetOccupancyReport(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, 42, report.Summary.TotalProperties)
	assert.False(t, recomputed)
}

func TestGetOccupancyReport_RecomputesUnreadableCache(t *testing.T) {
	cache := &mockReportCache{}
	cache.mockGet = func(ctx context.Context, key string) (*models.ReportCache, error) {
		return &models.ReportCache{CacheKey: key, Data: datatypes.JSON([]byte("{broken"))}, nil
	}

	svc, propertyRepo, _, _ := occupancyFixture(cache)
	propertyRepo.mockFindByIDs = singleProperty(models.Property{ID: 4, Status: models.PropertyStatusActive})

	report, err := svc.GetOccupancyReport(context.Background(), []uint{4}, day(2026, 3, 1), day(2026, 3, 31))
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalProperties)
	// The bad entry got overwritten with a fresh report
	assert.Len(t, cache.setKeys, 1)
}

func TestRefreshDashboardCache(t *testing.T) {
	cache := &mockReportCache{}
	svc, propertyRepo, _, _ := occupancyFixture(cache)
	propertyRepo.mockFindAllActive = func(ctx context.Context) ([]models.Property, error) {
		return []models.Property{{ID: 4, Status: models.PropertyStatusActive}}, nil
	}

	err := svc.RefreshDashboardCache(context.Background())
	assert.NoError(t, err)

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	wantKey := occupancyCacheKey(nil, monthStart, monthStart.AddDate(0, 1, 0))
	assert.Equal(t, []string{wantKey}, cache.setKeys)
}

func TestInvalidateAndCleanCache(t *testing.T) {
	cache := &mockReportCache{}
	svc, _, _, _ := occupancyFixture(cache)

	svc.InvalidateReports(context.Background())
	assert.Equal(t, 1, cache.invalidations())

	assert.NoError(t, svc.CleanExpiredCache(context.Background()))
	assert.Equal(t, 1, cache.cleanupCalls)
}

func TestMergeIntervals(t *testing.T) {
	clipStart := day(2026, 3, 1)
	clipEnd := day(2026, 3, 31)

	reservations := []models.Reservation{
		{StartDate: day(2026, 3, 12), EndDate: day(2026, 3, 16)},
		{StartDate: day(2026, 3, 10), EndDate: day(2026, 3, 14)},
		// back-to-back joins the span above
		{StartDate: day(2026, 3, 16), EndDate: day(2026, 3, 18)},
		// disjoint
		{StartDate: day(2026, 3, 25), EndDate: day(2026, 3, 27)},
		// entirely outside the clip window, dropped
		{StartDate: day(2026, 4, 2), EndDate: day(2026, 4, 5)},
	}

	merged := mergeIntervals(reservations, clipStart, clipEnd)
	assert.Len(t, merged, 2)
	assert.Equal(t, day(2026, 3, 10), merged[0].start)
	assert.Equal(t, day(2026, 3, 18), merged[0].end)
	assert.Equal(t, day(2026, 3, 25), merged[1].start)
	assert.Equal(t, day(2026, 3, 27), merged[1].end)

	assert.Empty(t, mergeIntervals(nil, clipStart, clipEnd))
}

func TestOccupancyRateRounding(t *testing.T) {
	assert.Equal(t, 0.0, OccupancyRate(5, 0))
	assert.Equal(t, 100.0, OccupancyRate(30, 30))
	assert.Equal(t, 33.3, OccupancyRate(10, 30))
	assert.Equal(t, 66.7, OccupancyRate(20, 30))

	assert.Equal(t, 0.0, AverageDailyRate(5000, 0))
	assert.Equal(t, 0.0, RevenuePerAvailableDay(5000, 0))
}
