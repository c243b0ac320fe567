package events

import "encoding/json"

// EventData is the interface implemented by typed event payloads
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// AnalysisCompleteData contains data for AnalysisComplete events
type AnalysisCompleteData struct {
	Symbol       string  `json:"symbol"`
	AnalysisID   string  `json:"analysis_id"`
	OverallScore float64 `json:"overall_score"`
	RiskRating   string  `json:"risk_rating"`
}

// EventType returns the event type for AnalysisCompleteData
func (d *AnalysisCompleteData) EventType() EventType {
	return AnalysisComplete
}

// AnalysisFailedData contains data for AnalysisFailed events
type AnalysisFailedData struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// EventType returns the event type for AnalysisFailedData
func (d *AnalysisFailedData) EventType() EventType {
	return AnalysisFailed
}

// CompanyRefreshedData contains data for CompanyRefreshed events
type CompanyRefreshedData struct {
	Symbol string `json:"symbol"`
	Source string `json:"source,omitempty"`
}

// EventType returns the event type for CompanyRefreshedData
func (d *CompanyRefreshedData) EventType() EventType {
	return CompanyRefreshed
}

// IndicesSyncedData contains data for IndicesSynced events
type IndicesSyncedData struct {
	Count int `json:"count"`
}

// EventType returns the event type for IndicesSyncedData
func (d *IndicesSyncedData) EventType() EventType {
	return IndicesSynced
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// convertEventDataToMap converts typed EventData to map[string]interface{}
// for transport over the bus and the notification hub.
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}
