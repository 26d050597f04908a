package dto

// AttendanceMarkItem is one student's status in a bulk mark request.
type AttendanceMarkItem struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// AttendanceMarkRequest marks many students for a single date.
type AttendanceMarkRequest struct {
	Date           string               `json:"date" validate:"required,datetime=2006-01-02"`
	AttendanceData []AttendanceMarkItem `json:"attendanceData" validate:"required,min=1,dive"`
}

// AttendanceMarkResponse reports the outcome of a bulk mark.
type AttendanceMarkResponse struct {
	Date     string `json:"date"`
	Marked   int    `json:"marked"`
	Notified int    `json:"notified"`
}

// AttendanceQuery scopes attendance reads.
type AttendanceQuery struct {
	Date      string
	From      string
	To        string
	ClassID   *uint
	SectionID *uint
}

// AttendanceDayRecord is a student's resolved status on one date.
type AttendanceDayRecord struct {
	StudentID   uint   `json:"student_id"`
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	RollNumber  *int   `json:"roll_number"`
	Status      string `json:"status"`
}

// AttendanceListResponse lists every in-scope student for a date.
type AttendanceListResponse struct {
	Date        string                `json:"date"`
	Holiday     bool                  `json:"holiday"`
	HolidayName string                `json:"holiday_name,omitempty"`
	Records     []AttendanceDayRecord `json:"records"`
}

// AttendanceSummaryItem aggregates one student's statuses over a range.
type AttendanceSummaryItem struct {
	StudentID   uint    `json:"student_id"`
	AdmissionNo string  `json:"admission_no"`
	Name        string  `json:"name"`
	RollNumber  *int    `json:"roll_number"`
	Present     int64   `json:"present"`
	Absent      int64   `json:"absent"`
	Late        int64   `json:"late"`
	HalfDay     int64   `json:"half_day"`
	Marked      int64   `json:"marked"`
	Percentage  float64 `json:"percentage"`
}

// AttendanceSummaryResponse wraps summary rows for a range.
type AttendanceSummaryResponse struct {
	From  string                  `json:"from"`
	To    string                  `json:"to"`
	Items []AttendanceSummaryItem `json:"items"`
}

// DailyAttendanceTotals counts statuses for one calendar day.
type DailyAttendanceTotals struct {
	Date        string `json:"date"`
	Holiday     bool   `json:"holiday"`
	HolidayName string `json:"holiday_name,omitempty"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
	Late        int    `json:"late"`
	HalfDay     int    `json:"half_day"`
	Unmarked    int    `json:"unmarked"`
}

// DailyAttendanceResponse lists per-day totals over a range.
type DailyAttendanceResponse struct {
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Students int                     `json:"students"`
	Days     []DailyAttendanceTotals `json:"days"`
}

// MonthlyReportRequest selects the month and scope of an attendance report.
type MonthlyReportRequest struct {
	Year      int
	Month     int
	ClassID   *uint
	SectionID *uint
	StudentID *uint
}

// DayStatus is a single cell of the attendance report.
type DayStatus struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// StudentMonthlyReport holds one student's row of the report.
type StudentMonthlyReport struct {
	StudentID   uint           `json:"student_id"`
	AdmissionNo string         `json:"admission_no"`
	Name        string         `json:"name"`
	RollNumber  *int           `json:"roll_number"`
	Days        []DayStatus    `json:"days"`
	Totals      map[string]int `json:"totals"`
}

// MonthlyReportResponse is a dense student x day attendance grid.
type MonthlyReportResponse struct {
	Year     int                    `json:"year"`
	Month    int                    `json:"month"`
	Days     int                    `json:"days"`
	Holidays []HolidayResponse      `json:"holidays"`
	Students []StudentMonthlyReport `json:"students"`
	CacheHit bool                   `json:"cache_hit"`
}
