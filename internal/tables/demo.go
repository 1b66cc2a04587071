package tables

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
)

// ApplyDemoSeeds ensures demo data exists with realistic states for
// demonstration. It applies standard seeding first, then books a few
// reservations and a waitlist party so the floor plan has something to show.
func ApplyDemoSeeds(ctx context.Context, repo TableRepo, reservations ReservationRepo, seedFS embed.FS, logger aqm.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}
	if reservations == nil {
		return errors.New("reservation repository is required")
	}

	if err := ApplyTableSeeds(ctx, repo, seedFS, logger); err != nil {
		return fmt.Errorf("apply standard table seeds: %w", err)
	}

	shopID, _, err := loadTableSeeds(seedFS)
	if err != nil {
		return err
	}

	demoSeeds := buildDemoReservationSeeds(shopID, repo, reservations, logger)
	if len(demoSeeds) == 0 {
		logger.Info("No demo reservations to apply")
		return nil
	}

	tracker, err := trackerFromRepo(repo)
	if err != nil {
		return err
	}

	logger.Info("Applying demo reservations")
	if err := seed.Apply(ctx, tracker, demoSeeds, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Demo reservations applied successfully")
	return nil
}

func buildDemoReservationSeeds(shopID uuid.UUID, repo TableRepo, reservations ReservationRepo, logger aqm.Logger) []seed.Seed {
	demoBookings := []struct {
		customer    string
		phone       string
		partySize   int
		tableNumber string
		hoursAhead  int
		waitlist    bool
	}{
		{"Lena Fischer", "+49-160-555-0101", 2, "1", 2, false},
		{"Marco Ybarra", "+34-655-555-0188", 4, "5", 3, false},
		{"Priya Nair", "+44-7700-555-0123", 3, "", 0, true},
	}

	var defs []seed.Seed
	for _, booking := range demoBookings {
		booking := booking

		logger.Info("Including demo reservation", "customer", booking.customer, "party_size", booking.partySize)

		seedID := fmt.Sprintf("2026-08-10_demo_reservation_%s", seedIdentifier(booking.customer))
		description := fmt.Sprintf("Book demo reservation for %s", booking.customer)

		defs = append(defs, seed.Seed{
			ID:          seedID,
			Description: description,
			Run: func(ctx context.Context) error {
				reservation := NewReservation()
				reservation.ShopID = shopID
				reservation.CustomerName = booking.customer
				reservation.CustomerPhone = booking.phone
				reservation.PartySize = booking.partySize
				reservation.CreatedBy = "seed:demo"
				reservation.UpdatedBy = "seed:demo"

				if booking.waitlist {
					reservation.ReservedFor = time.Now()
				} else {
					reservation.ReservedFor = time.Now().Add(time.Duration(booking.hoursAhead) * time.Hour)
					table, err := repo.GetByNumber(ctx, shopID, booking.tableNumber)
					if err != nil || table == nil {
						logger.Info("Demo reservation table not found, booking without table", "number", booking.tableNumber)
					} else {
						reservation.TableID = &table.ID
						if table.Status == StatusAvailable {
							table.Status = StatusReserved
							table.UpdatedBy = "seed:demo"
							table.BeforeUpdate()
							if err := repo.Save(ctx, table); err != nil {
								return fmt.Errorf("hold demo table %s: %w", booking.tableNumber, err)
							}
						}
					}
				}

				reservation.BeforeCreate()
				if err := reservations.Create(ctx, reservation); err != nil {
					return fmt.Errorf("create demo reservation for %s: %w", booking.customer, err)
				}

				logger.Info("Demo reservation created", "customer", booking.customer, "id", reservation.ID.String())
				return nil
			},
		})
	}

	return defs
}

// DemoSeedingFunc returns an aqm lifecycle OnStart-compatible function which
// starts applying demo seeds in the background.
func DemoSeedingFunc(seedCtx context.Context, repo TableRepo, reservations ReservationRepo, seedFS embed.FS, logger aqm.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting demo seeding in background")
		go func() {
			if err := ApplyDemoSeeds(seedCtx, repo, reservations, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("❌ Demo seeds failed: %v", err)
			} else if err == nil {
				logger.Info("✓ Demo seeding completed successfully")
			}
		}()
		return nil
	}
}
