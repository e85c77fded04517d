package services

import "math"

// Pure metric functions shared by the occupancy aggregator, exports and tests.

// OccupancyRate returns occupied/total as a percentage rounded to one
// decimal. Zero total yields zero, not NaN.
func OccupancyRate(occupiedDays, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	rate := float64(occupiedDays) / float64(totalDays) * 100
	return math.Round(rate*10) / 10
}

// AverageDailyRate is revenue per occupied day (ADR)
func AverageDailyRate(totalRevenue float64, occupiedDays int) float64 {
	if occupiedDays <= 0 {
		return 0
	}
	return totalRevenue / float64(occupiedDays)
}

// RevenuePerAvailableDay is revenue per inventory day (RevPAR), counting
// vacant days in the denominator
func RevenuePerAvailableDay(totalRevenue float64, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	return totalRevenue / float64(totalDays)
}
