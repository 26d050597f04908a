package dto

import "github.com/noah-isme/sekolah-go-api/internal/models"

// HolidayRequest creates or renames a holiday.
type HolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=255"`
}

// HolidayResponse serializes a holiday entry.
type HolidayResponse struct {
	ID   uint   `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// NewHolidayResponse converts a holiday model into a DTO.
func NewHolidayResponse(holiday models.SchoolHoliday) HolidayResponse {
	return HolidayResponse{
		ID:   holiday.ID,
		Date: FormatDate(holiday.HolidayDate),
		Name: holiday.Name,
	}
}
