package model

import "time"

// ExportRun records one conversion for the audit trail.
type ExportRun struct {
	StartedAt     time.Time
	Source        string // "csv" or "api"
	ManifestPath  string
	CourierPath   string
	LabelsURL     string
	ID            int64
	TotalOrders   int
	Singapore     int
	USCanada      int
	International int
}

// ProductOverride pins a line-item name to a classification, overriding the
// substring vocabulary. Written by the review flow.
type ProductOverride struct {
	CreatedAt    time.Time
	LineItemName string
	Product      Product
}
