package daylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fdg312/nutridesk/internal/daycache"
	"github.com/fdg312/nutridesk/internal/goals"
	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate   = errors.New("invalid date format")
	ErrInvalidRange  = errors.New("from must not be after to")
	ErrRangeTooLarge = errors.New("date range too large")
	ErrEntryNotFound = errors.New("entry not found")
	ErrDayFull       = errors.New("too many entries for this day")
	ErrValidation    = errors.New("invalid_request")
)

// Service builds day views and journals from logged entries. Callers
// resolve access first; userID is always the subject of the request.
type Service struct {
	entries        storage.DayEntriesStorage
	goals          *goals.Service
	days           *daycache.Loader[[]storage.DayEntry]
	maxEntries     int
	maxJournalDays int
}

// Options tunes Service limits.
type Options struct {
	MaxEntriesPerDay int
	MaxJournalDays   int
}

// NewService creates a new day log service.
func NewService(entries storage.DayEntriesStorage, goalsService *goals.Service, days *daycache.Loader[[]storage.DayEntry], opts Options) *Service {
	if opts.MaxEntriesPerDay <= 0 {
		opts.MaxEntriesPerDay = 200
	}
	if opts.MaxJournalDays <= 0 {
		opts.MaxJournalDays = 31
	}
	return &Service{
		entries:        entries,
		goals:          goalsService,
		days:           days,
		maxEntries:     opts.MaxEntriesPerDay,
		maxJournalDays: opts.MaxJournalDays,
	}
}

// Day returns the scaled day view of userID.
func (s *Service) Day(ctx context.Context, userID, date string) (*DayResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	rows, err := s.load(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	resp := &DayResponse{
		Date:   date,
		UserID: userID,
		Meals: MealsDTO{
			Breakfast: []EntryDTO{},
			Lunch:     []EntryDTO{},
			Dinner:    []EntryDTO{},
			Snack:     []EntryDTO{},
		},
		Exercise: []EntryDTO{},
		Water:    []EntryDTO{},
	}

	var day nutrient.DailyNutrition
	for _, row := range rows {
		entry, err := toEntry(row)
		if err != nil {
			return nil, err
		}
		appendToSlot(&day, row.Slot, entry.Item)
		switch row.Slot {
		case SlotBreakfast:
			resp.Meals.Breakfast = append(resp.Meals.Breakfast, entry)
		case SlotLunch:
			resp.Meals.Lunch = append(resp.Meals.Lunch, entry)
		case SlotDinner:
			resp.Meals.Dinner = append(resp.Meals.Dinner, entry)
		case SlotSnack:
			resp.Meals.Snack = append(resp.Meals.Snack, entry)
		case SlotExercise:
			resp.Exercise = append(resp.Exercise, entry)
		case SlotWater:
			resp.Water = append(resp.Water, entry)
		}
	}

	resp.Totals = nutrient.AggregateMeals(day)
	resp.BurntCalories = nutrient.BurntCalories(day.Exercise)
	resp.NetCalories = resp.Totals.Grand.Calories - resp.BurntCalories
	resp.WaterMl = waterMl(day.Water)

	g, isDefault, err := s.goals.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp.Goals = g
	resp.GoalsIsDefault = isDefault
	resp.Percentages = percentages(resp.Totals.Grand, resp.WaterMl, g)

	return resp, nil
}

// AddEntry logs an item for userID on date.
func (s *Service) AddEntry(ctx context.Context, userID, createdBy, date string, req CreateEntryRequest) (*EntryDTO, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existing, err := s.entries.List(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	if len(existing) >= s.maxEntries {
		return nil, ErrDayFull
	}

	payload, err := json.Marshal(req.item())
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}

	row := &storage.DayEntry{
		UserID:    userID,
		Date:      date,
		Slot:      req.Slot,
		Payload:   payload,
		CreatedBy: createdBy,
	}
	if err := s.entries.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}
	s.days.Invalidate(ctx, userID, date)

	entry, err := toEntry(*row)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry of userID.
func (s *Service) DeleteEntry(ctx context.Context, userID, date string, id uuid.UUID) error {
	if err := validateDate(date); err != nil {
		return err
	}

	deleted, err := s.entries.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	s.days.Invalidate(ctx, userID, date, deleted.Date)
	return nil
}

// Journal summarises every day in [from, to]. The range is bounded by the
// journal limit.
func (s *Service) Journal(ctx context.Context, userID, from, to string) (*JournalResponse, error) {
	return s.Summarize(ctx, userID, from, to, s.maxJournalDays)
}

// Summarize is Journal with a caller-chosen range limit in days.
func (s *Service) Summarize(ctx context.Context, userID, from, to string, maxDays int) (*JournalResponse, error) {
	fromDate, toDate, err := parseRange(from, to, maxDays)
	if err != nil {
		return nil, err
	}

	rows, err := s.entries.List(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	byDate := make(map[string]*nutrient.DailyNutrition)
	counts := make(map[string]int)
	for _, row := range rows {
		var item nutrient.AppliedItem
		if err := json.Unmarshal(row.Payload, &item); err != nil {
			return nil, fmt.Errorf("failed to decode entry %s: %w", row.ID, err)
		}
		day, ok := byDate[row.Date]
		if !ok {
			day = &nutrient.DailyNutrition{}
			byDate[row.Date] = day
		}
		appendToSlot(day, row.Slot, item)
		counts[row.Date]++
	}

	resp := &JournalResponse{UserID: userID, From: from, To: to, Days: []JournalDay{}}
	var sum nutrient.Totals
	for d := fromDate; !d.After(toDate); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		jd := JournalDay{Date: date}
		if day, ok := byDate[date]; ok {
			jd.Totals = nutrient.AggregateMeals(*day).Grand
			jd.BurntCalories = nutrient.BurntCalories(day.Exercise)
			jd.WaterMl = waterMl(day.Water)
			jd.Entries = counts[date]
			sum = sum.Add(jd.Totals)
			resp.LoggedDays++
		}
		resp.Days = append(resp.Days, jd)
	}

	if resp.LoggedDays > 0 {
		n := float64(resp.LoggedDays)
		resp.Average = nutrient.Totals{
			Calories:             round1(sum.Calories / n),
			ProteinsInGrams:      round1(sum.ProteinsInGrams / n),
			CarbohydratesInGrams: round1(sum.CarbohydratesInGrams / n),
			FatInGrams:           round1(sum.FatInGrams / n),
		}
	}
	return resp, nil
}

func parseRange(from, to string, maxDays int) (time.Time, time.Time, error) {
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if fromDate.After(toDate) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	if days := int(toDate.Sub(fromDate).Hours()/24) + 1; days > maxDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: at most %d days", ErrRangeTooLarge, maxDays)
	}
	return fromDate, toDate, nil
}

func (s *Service) load(ctx context.Context, userID, date string) ([]storage.DayEntry, error) {
	rows, err := s.days.Load(ctx, userID, date, func(ctx context.Context) ([]storage.DayEntry, error) {
		return s.entries.List(ctx, userID, date, date)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load day: %w", err)
	}
	return rows, nil
}

func toEntry(row storage.DayEntry) (EntryDTO, error) {
	var item nutrient.AppliedItem
	if err := json.Unmarshal(row.Payload, &item); err != nil {
		return EntryDTO{}, fmt.Errorf("failed to decode entry %s: %w", row.ID, err)
	}

	var scaled nutrient.Result
	if row.Slot != SlotWater {
		scaled = nutrient.ScaleAppliedQuantity(item)
	}

	return EntryDTO{
		ID:        row.ID,
		Slot:      row.Slot,
		Item:      item,
		Scaled:    scaled,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}, nil
}

func appendToSlot(day *nutrient.DailyNutrition, slot string, item nutrient.AppliedItem) {
	switch slot {
	case SlotBreakfast:
		day.Breakfast = append(day.Breakfast, item)
	case SlotLunch:
		day.Lunch = append(day.Lunch, item)
	case SlotDinner:
		day.Dinner = append(day.Dinner, item)
	case SlotSnack:
		day.Snack = append(day.Snack, item)
	case SlotExercise:
		day.Exercise = append(day.Exercise, item)
	case SlotWater:
		day.Water = append(day.Water, item)
	}
}

func waterMl(items []nutrient.AppliedItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

func percentages(t nutrient.Totals, water float64, g goals.GoalsDTO) Percentages {
	return Percentages{
		Calories:      percentOf(t.Calories, g.TotalCalories),
		Proteins:      percentOf(t.ProteinsInGrams, g.ProteinsInGrams),
		Carbohydrates: percentOf(t.CarbohydratesInGrams, g.CarbohydratesInGrams),
		Fat:           percentOf(t.FatInGrams, g.FatInGrams),
		Water:         percentOf(water, g.WaterMl),
	}
}

func percentOf(v float64, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return round1(v / float64(goal) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
