package handlers

import (
	"sort"
	"time"

	"campuscafe/internal/models"
)

const productRankingLimit = 10

type salesSummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	OrderCount        int     `json:"orderCount"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	TopProduct        string  `json:"topProduct"`
}

type dailySales struct {
	Date          string  `json:"date"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	GrowthPercent float64 `json:"growthPercent"`
}

type hourlyBucket struct {
	Hour   int `json:"hour"`
	Orders int `json:"orders"`
}

type productRanking struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Revenue      float64 `json:"revenue"`
	RevenueShare float64 `json:"revenueShare"`
}

// computeSalesSummary aggregates completed orders into headline figures.
func computeSalesSummary(orders []models.Order) salesSummary {
	summary := salesSummary{}

	quantities := map[string]int{}
	for _, order := range orders {
		summary.TotalRevenue += order.TotalAmount
		summary.OrderCount++
		for _, item := range order.Items {
			quantities[item.Name] += item.Quantity
		}
	}

	summary.TotalRevenue = roundCents(summary.TotalRevenue)
	if summary.OrderCount > 0 {
		summary.AverageOrderValue = roundCents(summary.TotalRevenue / float64(summary.OrderCount))
	}

	best := 0
	for name, quantity := range quantities {
		if quantity > best || (quantity == best && name < summary.TopProduct) {
			best = quantity
			summary.TopProduct = name
		}
	}

	return summary
}

// computeDailySales walks the range day by day so gaps show up as zero rows,
// and reports day-over-day revenue growth.
func computeDailySales(orders []models.Order, start, end time.Time) []dailySales {
	revenueByDay := map[string]float64{}
	ordersByDay := map[string]int{}
	for _, order := range orders {
		day := order.CreatedAt.Format("2006-01-02")
		revenueByDay[day] += order.TotalAmount
		ordersByDay[day]++
	}

	days := make([]dailySales, 0)
	previousRevenue := 0.0
	first := true

	// Floor to midnight in the range's own location; truncating on the
	// UTC epoch would shift the day boundary by the zone offset.
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for day := startDay; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		entry := dailySales{
			Date:    key,
			Revenue: roundCents(revenueByDay[key]),
			Orders:  ordersByDay[key],
		}

		if !first && previousRevenue > 0 {
			entry.GrowthPercent = roundCents((entry.Revenue - previousRevenue) / previousRevenue * 100)
		}

		days = append(days, entry)
		previousRevenue = entry.Revenue
		first = false
	}

	return days
}

// computeHourlyDistribution buckets order counts into the 24 hours of day.
func computeHourlyDistribution(orders []models.Order) []hourlyBucket {
	buckets := make([]hourlyBucket, 24)
	for hour := range buckets {
		buckets[hour].Hour = hour
	}

	for _, order := range orders {
		buckets[order.CreatedAt.Hour()].Orders++
	}

	return buckets
}

// computeProductRanking ranks products by quantity sold and attributes each
// a share of the total item revenue.
func computeProductRanking(orders []models.Order, limit int) []productRanking {
	type productTotals struct {
		quantity int
		revenue  float64
	}

	totals := map[string]*productTotals{}
	totalRevenue := 0.0

	for _, order := range orders {
		for _, item := range order.Items {
			entry, ok := totals[item.Name]
			if !ok {
				entry = &productTotals{}
				totals[item.Name] = entry
			}
			entry.quantity += item.Quantity
			entry.revenue += item.TotalPrice()
			totalRevenue += item.TotalPrice()
		}
	}

	ranking := make([]productRanking, 0, len(totals))
	for name, entry := range totals {
		ranking = append(ranking, productRanking{
			Name:     name,
			Quantity: entry.quantity,
			Revenue:  roundCents(entry.revenue),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].Name < ranking[j].Name
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}

	if totalRevenue > 0 {
		for i := range ranking {
			ranking[i].RevenueShare = roundCents(ranking[i].Revenue / totalRevenue * 100)
		}
	}

	return ranking
}
