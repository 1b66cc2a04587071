package tables

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Human-readable scoring reasons. The UI renders these verbatim; the two
// warning markers also drive the HasConflicts banner.
const (
	ReasonExactFit        = "exact capacity match"
	ReasonSnugFit         = "one seat to spare"
	ReasonComfortableFit  = "two seats to spare"
	ReasonOversized       = "larger than needed"
	ReasonTooSmall        = "table too small for party"
	ReasonSectionMatch    = "preferred section"
	ReasonAvailableNow    = "available now"
	ReasonBeingCleaned    = "being cleaned, ready shortly"
	ReasonScheduleClear   = "no nearby reservations"
	ReasonScheduleConflict = "reservation within two hours"
	ReasonPrimeTable      = "low table number"
)

// conflictWindow is how close an existing reservation has to be to the
// requested time to count against a table.
const conflictWindow = 2 * time.Hour

const maxSuggestions = 5

// Criteria describes the party looking for a table.
type Criteria struct {
	PartySize        int        `json:"party_size"`
	ReservationTime  *time.Time `json:"reservation_time,omitempty"`
	PreferredSection string     `json:"preferred_section,omitempty"`
}

// Score is the result of evaluating one table against the criteria.
type Score struct {
	Value   int      `json:"value"`
	Reasons []string `json:"reasons"`
}

// Suggestion pairs a candidate table with its score.
type Suggestion struct {
	Table   *Table   `json:"table"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// SuggestionResult is what the optimizer hands the UI. HasConflicts flags a
// warning banner; it never blocks selection.
type SuggestionResult struct {
	Suggestions  []Suggestion `json:"suggestions"`
	HasConflicts bool         `json:"has_conflicts"`
}

// ScoreTable evaluates a single table against the criteria. It is a pure
// function so each weight can be unit tested in isolation; existing
// reservations for the table are passed in by the caller.
func ScoreTable(t *Table, criteria Criteria, reservations []*Reservation) Score {
	var score Score

	diff := t.Capacity - criteria.PartySize
	switch {
	case diff == 0:
		score.add(100, ReasonExactFit)
	case diff == 1:
		score.add(80, ReasonSnugFit)
	case diff == 2:
		score.add(60, ReasonComfortableFit)
	case diff > 2:
		points := 60 - (diff-2)*10
		if points < 20 {
			points = 20
		}
		score.add(points, ReasonOversized)
	default:
		// Too small: penalized but never excluded, so staff can still
		// choose to squeeze a party in.
		score.add(-50, ReasonTooSmall)
	}

	if criteria.PreferredSection != "" && t.Section == criteria.PreferredSection {
		score.add(30, ReasonSectionMatch)
	}

	switch t.Status {
	case StatusAvailable:
		score.add(20, ReasonAvailableNow)
	case StatusCleaning:
		score.add(10, ReasonBeingCleaned)
	}

	if criteria.ReservationTime != nil {
		if hasScheduleConflict(*criteria.ReservationTime, reservations) {
			score.add(-40, ReasonScheduleConflict)
		} else {
			score.add(15, ReasonScheduleClear)
		}
	}

	if num, ok := numericPortion(t.Number); ok && num <= 10 {
		score.add(5, ReasonPrimeTable)
	}

	return score
}

func (s *Score) add(points int, reason string) {
	s.Value += points
	s.Reasons = append(s.Reasons, reason)
}

func hasScheduleConflict(target time.Time, reservations []*Reservation) bool {
	for _, r := range reservations {
		if r.Terminal() {
			continue
		}
		delta := r.ReservedFor.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta <= conflictWindow {
			return true
		}
	}
	return false
}

// numericPortion extracts the first run of digits from a table number such as
// "T12" or "7a".
func numericPortion(number string) (int, bool) {
	start := -1
	end := -1
	for i, ch := range number {
		if ch >= '0' && ch <= '9' {
			if start < 0 {
				start = i
			}
			end = i + 1
		} else if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(number[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Suggester ranks candidate tables for an incoming party.
type Suggester struct {
	tableRepo       TableRepo
	reservationRepo ReservationRepo
	logger          aqm.Logger
}

func NewSuggester(tableRepo TableRepo, reservationRepo ReservationRepo, logger aqm.Logger) *Suggester {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Suggester{
		tableRepo:       tableRepo,
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// Suggest scores available and cleaning tables and returns the top ranked
// suggestions. Scores are clamped at zero and zero-score tables are dropped;
// ties break by table number ascending, then stable insertion order.
func (s *Suggester) Suggest(ctx context.Context, shopID uuid.UUID, criteria Criteria) (*SuggestionResult, error) {
	if criteria.PartySize <= 0 {
		return nil, fmt.Errorf("party size must be greater than 0")
	}

	available, err := s.tableRepo.ListByStatus(ctx, shopID, StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("cannot list available tables: %w", err)
	}
	cleaning, err := s.tableRepo.ListByStatus(ctx, shopID, StatusCleaning)
	if err != nil {
		return nil, fmt.Errorf("cannot list cleaning tables: %w", err)
	}
	candidates := append(available, cleaning...)

	byTable, err := s.reservationsByTable(ctx, shopID, criteria.ReservationTime)
	if err != nil {
		return nil, err
	}

	var suggestions []Suggestion
	for _, t := range candidates {
		score := ScoreTable(t, criteria, byTable[t.ID])
		if score.Value < 0 {
			score.Value = 0
		}
		if score.Value == 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Table:   t,
			Score:   score.Value,
			Reasons: score.Reasons,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return lessByNumber(suggestions[i].Table.Number, suggestions[j].Table.Number)
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	result := &SuggestionResult{Suggestions: suggestions}
	for _, sg := range suggestions {
		for _, reason := range sg.Reasons {
			if reason == ReasonScheduleConflict || reason == ReasonTooSmall {
				result.HasConflicts = true
			}
		}
	}
	return result, nil
}

func (s *Suggester) reservationsByTable(ctx context.Context, shopID uuid.UUID, at *time.Time) (map[uuid.UUID][]*Reservation, error) {
	byTable := make(map[uuid.UUID][]*Reservation)
	if at == nil {
		return byTable, nil
	}

	from := at.Add(-conflictWindow)
	to := at.Add(conflictWindow)
	reservations, err := s.reservationRepo.ListByWindow(ctx, shopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("cannot scan reservations: %w", err)
	}
	for _, r := range reservations {
		if r.TableID == nil {
			continue
		}
		byTable[*r.TableID] = append(byTable[*r.TableID], r)
	}
	return byTable, nil
}

func lessByNumber(a, b string) bool {
	na, okA := numericPortion(a)
	nb, okB := numericPortion(b)
	if okA && okB && na != nb {
		return na < nb
	}
	return strings.Compare(a, b) < 0
}
