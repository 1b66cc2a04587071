package tables

import (
	"context"
	"fmt"
	"math"

	aqm "github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Canvas geometry, in pixels. Cell and box sizes come from the floor-plan
// canvas the staff tooling renders; the buffer keeps dragged tables from
// visually touching.
const (
	CanvasMargin    = 20.0
	GridColumns     = 6
	CellWidth       = 120.0
	CellHeight      = 100.0
	TableBoxWidth   = 100.0
	TableBoxHeight  = 80.0
	CollisionBuffer = 10.0
	GridSnap        = 20.0
	MaxSearchRadius = 400.0
)

// Bounds describes the drawable canvas area.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultBounds matches the staff tooling's canvas.
var DefaultBounds = Bounds{Width: 800, Height: 600}

// DefaultPosition lays tables out in reading order on a fixed grid. It is
// used whenever a table's stored position is nil.
func DefaultPosition(index int) Position {
	if index < 0 {
		index = 0
	}
	return Position{
		X: CanvasMargin + float64(index%GridColumns)*CellWidth,
		Y: CanvasMargin + math.Floor(float64(index)/GridColumns)*CellHeight,
	}
}

// EffectivePosition resolves a table's position, falling back to its default
// grid slot. The index is the table's position in the shop's stable listing
// order.
func EffectivePosition(t *Table, index int) Position {
	if t.Position != nil {
		return *t.Position
	}
	return DefaultPosition(index)
}

// HasCollision reports whether a box placed at (x, y) would overlap any other
// table's box. Boxes are axis-aligned with a buffer margin; two boxes collide
// iff both axis projections overlap.
func HasCollision(others []*Table, x, y float64, excludeTableID uuid.UUID) bool {
	for i, other := range others {
		if other.ID == excludeTableID {
			continue
		}
		pos := EffectivePosition(other, i)
		if boxesOverlap(x, y, pos.X, pos.Y) {
			return true
		}
	}
	return false
}

func boxesOverlap(ax, ay, bx, by float64) bool {
	overlapX := ax < bx+TableBoxWidth+CollisionBuffer && bx < ax+TableBoxWidth+CollisionBuffer
	overlapY := ay < by+TableBoxHeight+CollisionBuffer && by < ay+TableBoxHeight+CollisionBuffer
	return overlapX && overlapY
}

// FindNearestFreePosition returns the drop target unchanged when it is
// collision-free. Otherwise it searches concentric rings of increasing radius,
// probing eight compass offsets per ring in reading-order priority (right,
// down, left, up, then diagonals), snapping each candidate to the grid and
// clamping to the canvas before testing. When the search radius is exhausted
// the raw target is returned: the UI never refuses a drop outright.
func FindNearestFreePosition(others []*Table, targetX, targetY float64, excludeTableID uuid.UUID, bounds Bounds) Position {
	target := clampToBounds(Position{X: targetX, Y: targetY}, bounds)
	if !HasCollision(others, target.X, target.Y, excludeTableID) {
		return target
	}

	for radius := GridSnap; radius <= MaxSearchRadius; radius += GridSnap {
		offsets := [8][2]float64{
			{radius, 0},
			{0, radius},
			{-radius, 0},
			{0, -radius},
			{radius, radius},
			{-radius, radius},
			{radius, -radius},
			{-radius, -radius},
		}
		for _, off := range offsets {
			candidate := Position{X: target.X + off[0], Y: target.Y + off[1]}
			candidate = snapToGrid(candidate)
			candidate = clampToBounds(candidate, bounds)
			if !HasCollision(others, candidate.X, candidate.Y, excludeTableID) {
				return candidate
			}
		}
	}

	// Best effort: no free slot within the search radius.
	return target
}

func snapToGrid(p Position) Position {
	return Position{
		X: math.Round(p.X/GridSnap) * GridSnap,
		Y: math.Round(p.Y/GridSnap) * GridSnap,
	}
}

func clampToBounds(p Position, bounds Bounds) Position {
	maxX := bounds.Width - TableBoxWidth
	maxY := bounds.Height - TableBoxHeight
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	return Position{
		X: math.Min(math.Max(p.X, 0), maxX),
		Y: math.Min(math.Max(p.Y, 0), maxY),
	}
}

// FloorPlan binds the placement rules to the table store.
type FloorPlan struct {
	tableRepo TableRepo
	logger    aqm.Logger
}

func NewFloorPlan(tableRepo TableRepo, logger aqm.Logger) *FloorPlan {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &FloorPlan{
		tableRepo: tableRepo,
		logger:    logger,
	}
}

// Resolve loads the shop's tables and resolves a drop target to an accepted
// position. Concurrent drags race on in-flight targets by design: last write
// wins and the canvas reconciles against persisted positions on next read.
func (f *FloorPlan) Resolve(ctx context.Context, shopID uuid.UUID, targetX, targetY float64, excludeTableID uuid.UUID, bounds Bounds) (Position, error) {
	others, err := f.tableRepo.List(ctx, shopID)
	if err != nil {
		return Position{}, fmt.Errorf("cannot load floor plan: %w", err)
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = DefaultBounds
	}
	return FindNearestFreePosition(others, targetX, targetY, excludeTableID, bounds), nil
}

// CommitPosition resolves and persists the accepted coordinates for a table.
func (f *FloorPlan) CommitPosition(ctx context.Context, table *Table, targetX, targetY float64, bounds Bounds) (Position, error) {
	accepted, err := f.Resolve(ctx, table.ShopID, targetX, targetY, table.ID, bounds)
	if err != nil {
		return Position{}, err
	}

	table.Place(accepted.X, accepted.Y)
	table.BeforeUpdate()
	if err := f.tableRepo.Save(ctx, table); err != nil {
		return Position{}, fmt.Errorf("cannot persist table position: %w", err)
	}
	return accepted, nil
}
