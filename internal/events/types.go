// Package events provides event management functionality.
package events

// EventType represents different event types
type EventType string

const (
	AnalysisComplete EventType = "ANALYSIS_COMPLETE"
	AnalysisFailed   EventType = "ANALYSIS_FAILED"
	CompanyRefreshed EventType = "COMPANY_REFRESHED"
	IndicesSynced    EventType = "INDICES_SYNCED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)
