package dto

import "time"

// DashboardQuery selects the projection shown on the dashboard.
type DashboardQuery struct {
	View    string `form:"view"`
	Search  string `form:"search"`
	Program string `form:"program"`
}

// DashboardResponse is the full dashboard payload for one view.
type DashboardResponse struct {
	View         string              `json:"view"`
	Loading      bool                `json:"loading"`
	Counts       DashboardCounts     `json:"counts"`
	Rows         []DashboardRow      `json:"rows"`
	Trend        []TrendPoint        `json:"trend,omitempty"`
	Distribution []DistributionSlice `json:"distribution,omitempty"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}

// DashboardCounts are the KPI cards.
type DashboardCounts struct {
	Students    int `json:"students"`
	Teachers    int `json:"teachers"`
	NewToday    int `json:"newToday"`
	NewThisWeek int `json:"newThisWeek"`
}

// DashboardRow is one submission in a dashboard table.
type DashboardRow struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Phone       string                 `json:"phone"`
	Program     string                 `json:"program"`
	Status      string                 `json:"status"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Data        map[string]interface{} `json:"data"`
}

// TrendPoint counts student registrations on one calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DistributionSlice counts student registrations per program.
type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
