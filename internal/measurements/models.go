package measurements

import (
	"time"

	"github.com/google/uuid"
)

// MeasurementDTO is the API response format.
type MeasurementDTO struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	WeightKg   float64   `json:"weightKg"`
	BodyFatPct *float64  `json:"bodyFatPct,omitempty"`
	WaistCm    *float64  `json:"waistCm,omitempty"`
	HipsCm     *float64  `json:"hipsCm,omitempty"`
	ChestCm    *float64  `json:"chestCm,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UpsertMeasurementRequest is the request body for POST /v1/measurements.
// A second post for the same user and date replaces the first.
type UpsertMeasurementRequest struct {
	UserID     string   `json:"userId,omitempty"`
	Date       string   `json:"date"`
	WeightKg   *float64 `json:"weightKg"`
	BodyFatPct *float64 `json:"bodyFatPct,omitempty"`
	WaistCm    *float64 `json:"waistCm,omitempty"`
	HipsCm     *float64 `json:"hipsCm,omitempty"`
	ChestCm    *float64 `json:"chestCm,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// MetricProgress compares the first and last recorded value of a metric.
type MetricProgress struct {
	First     float64 `json:"first"`
	FirstDate string  `json:"firstDate"`
	Last      float64 `json:"last"`
	LastDate  string  `json:"lastDate"`
	Delta     float64 `json:"delta"`
}

// Progress summarises a range. Metrics never recorded in it are nil.
type Progress struct {
	WeightKg   *MetricProgress `json:"weightKg,omitempty"`
	BodyFatPct *MetricProgress `json:"bodyFatPct,omitempty"`
	WaistCm    *MetricProgress `json:"waistCm,omitempty"`
	HipsCm     *MetricProgress `json:"hipsCm,omitempty"`
	ChestCm    *MetricProgress `json:"chestCm,omitempty"`
}

// MeasurementsResponse is the response for listing measurements.
type MeasurementsResponse struct {
	UserID       string           `json:"userId"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	Measurements []MeasurementDTO `json:"measurements"`
	Progress     Progress         `json:"progress"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
