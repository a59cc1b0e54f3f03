package etl

import "time"

// QualityReport collects the outcome of a validation pass. Errors block the
// pipeline; warnings and info ride along for the caller.
type QualityReport struct {
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
	Info     []string     `json:"info"`
	Stats    QualityStats `json:"statistics"`
}

type QualityStats struct {
	TotalRecords int        `json:"total_records"`
	DateRange    DateRange  `json:"date_range"`
	PriceStats   PriceStats `json:"price_stats"`
	UniqueHotels int        `json:"unique_hotels"`
	UniqueRooms  int        `json:"unique_rooms"`
}

type DateRange struct {
	Earliest *time.Time `json:"earliest"`
	Latest   *time.Time `json:"latest"`
}

type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func (r *QualityReport) AddError(msg string)   { r.Errors = append(r.Errors, msg) }
func (r *QualityReport) AddWarning(msg string) { r.Warnings = append(r.Warnings, msg) }
func (r *QualityReport) AddInfo(msg string)    { r.Info = append(r.Info, msg) }

func (r *QualityReport) Valid() bool { return len(r.Errors) == 0 }
