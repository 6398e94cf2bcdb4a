package dto

// ReturnDateCheckResponse summarizes a return-date sweep run.
type ReturnDateCheckResponse struct {
	Processed          int `json:"processed"`
	RemindersSent      int `json:"remindersSent"`
	OverdueNoticesSent int `json:"overdueNoticesSent"`
}
