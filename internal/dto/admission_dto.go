package dto

import "github.com/ttifoundation/admission-backend/internal/models"

type ScheduleInterviewRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Platform string `json:"platform"`
	Link     string `json:"link"`
}

type DeleteAdmissionRequest struct {
	Reason string `json:"reason"`
}

// AdmissionResponse wraps a mutated record with a human message.
type AdmissionResponse struct {
	Message string            `json:"message"`
	Data    *models.Admission `json:"data"`
}

// DashboardResponse backs the get-data endpoint: every visible student plus
// per-status counts.
type DashboardResponse struct {
	Students     []models.Admission `json:"students"`
	StatusCounts map[string]int64   `json:"statusCounts"`
}

type FeedResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
}
