package measurements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var (
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrWeightRequired      = errors.New("weight is required")
	ErrInvalidDate         = errors.New("invalid date format")
	ErrInvalidRange        = errors.New("from must not be after to")
	ErrOutOfRange          = errors.New("measurement out of range")
)

// Service handles body measurement business logic. Callers resolve access
// first; userID is always the subject of the request.
type Service struct {
	storage storage.MeasurementsStorage
	now     func() time.Time
}

// NewService creates a new measurements service.
func NewService(storage storage.MeasurementsStorage) *Service {
	return &Service{storage: storage, now: time.Now}
}

// List returns measurements in [from, to] with a progress summary. An empty
// to means today; an empty from means one year before to.
func (s *Service) List(ctx context.Context, userID, from, to string) (*MeasurementsResponse, error) {
	if to == "" {
		to = s.now().UTC().Format(dateLayout)
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if from == "" {
		from = toDate.AddDate(-1, 0, 0).Format(dateLayout)
	}
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if fromDate.After(toDate) {
		return nil, ErrInvalidRange
	}

	rows, err := s.storage.List(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	items := make([]MeasurementDTO, len(rows))
	for i, m := range rows {
		items[i] = toDTO(m)
	}

	return &MeasurementsResponse{
		UserID:       userID,
		From:         from,
		To:           to,
		Measurements: items,
		Progress:     Summarize(rows),
	}, nil
}

// Upsert stores the measurement of userID for req.Date.
func (s *Service) Upsert(ctx context.Context, userID string, req UpsertMeasurementRequest) (*MeasurementDTO, error) {
	if req.Date == "" {
		req.Date = s.now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, ErrInvalidDate
	}
	if req.WeightKg == nil || *req.WeightKg <= 0 {
		return nil, ErrWeightRequired
	}
	if err := validateRanges(req); err != nil {
		return nil, err
	}

	saved, err := s.storage.Upsert(ctx, storage.Measurement{
		UserID:     userID,
		Date:       req.Date,
		WeightKg:   *req.WeightKg,
		BodyFatPct: req.BodyFatPct,
		WaistCm:    req.WaistCm,
		HipsCm:     req.HipsCm,
		ChestCm:    req.ChestCm,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert measurement: %w", err)
	}

	dto := toDTO(*saved)
	return &dto, nil
}

// Delete removes a measurement of userID.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.storage.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrMeasurementNotFound
		}
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return nil
}

func validateRanges(req UpsertMeasurementRequest) error {
	if *req.WeightKg > 500 {
		return fmt.Errorf("%w: weightKg must be at most 500", ErrOutOfRange)
	}
	if v := req.BodyFatPct; v != nil && (*v < 0 || *v > 100) {
		return fmt.Errorf("%w: bodyFatPct must be between 0 and 100", ErrOutOfRange)
	}
	for name, v := range map[string]*float64{"waistCm": req.WaistCm, "hipsCm": req.HipsCm, "chestCm": req.ChestCm} {
		if v != nil && (*v <= 0 || *v > 300) {
			return fmt.Errorf("%w: %s must be between 0 and 300", ErrOutOfRange, name)
		}
	}
	if len(req.Notes) > 1000 {
		return fmt.Errorf("%w: notes must be at most 1000 characters", ErrOutOfRange)
	}
	return nil
}

// Summarize compares the earliest and latest value of every metric in rows.
// rows must be ordered by date.
func Summarize(rows []storage.Measurement) Progress {
	var p Progress
	for _, m := range rows {
		weight := m.WeightKg
		track(&p.WeightKg, &weight, m.Date)
		track(&p.BodyFatPct, m.BodyFatPct, m.Date)
		track(&p.WaistCm, m.WaistCm, m.Date)
		track(&p.HipsCm, m.HipsCm, m.Date)
		track(&p.ChestCm, m.ChestCm, m.Date)
	}
	return p
}

func track(dst **MetricProgress, v *float64, date string) {
	if v == nil {
		return
	}
	if *dst == nil {
		*dst = &MetricProgress{First: *v, FirstDate: date}
	}
	mp := *dst
	mp.Last = *v
	mp.LastDate = date
	mp.Delta = mp.Last - mp.First
}

func toDTO(m storage.Measurement) MeasurementDTO {
	return MeasurementDTO{
		ID:         m.ID,
		UserID:     m.UserID,
		Date:       m.Date,
		WeightKg:   m.WeightKg,
		BodyFatPct: m.BodyFatPct,
		WaistCm:    m.WaistCm,
		HipsCm:     m.HipsCm,
		ChestCm:    m.ChestCm,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
