package models

// StatusOverview counts manufacturing orders per status.
type StatusOverview struct {
	Planned    int `json:"planned"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Cancelled  int `json:"cancelled"`
}

// ThroughputPoint is the number of orders completed on one calendar day (UTC).
type ThroughputPoint struct {
	Date  string `bson:"date" json:"date"`
	Count int    `bson:"count" json:"count"`
}

// ProductionThroughput is the completed-per-day series for a period.
type ProductionThroughput struct {
	Period string            `json:"period"`
	Data   []ThroughputPoint `json:"data"`
}

// CycleTimeSummary is the average creation-to-completion time over all done
// orders.
type CycleTimeSummary struct {
	AverageHours   float64 `json:"average_hours"`
	AverageMinutes float64 `json:"average_minutes"`
	OrdersMeasured int     `json:"orders_measured"`
}
