// Package seed fills an empty inventory with synthetic products at startup.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/abgdnv/inventory/internal/service"
)

var (
	adjectives = []string{"Rustic", "Sleek", "Ergonomic", "Refined", "Handmade", "Practical", "Compact", "Durable", "Lightweight", "Vintage"}
	nouns      = []string{"Chair", "Lamp", "Keyboard", "Backpack", "Kettle", "Bottle", "Wallet", "Blanket", "Speaker", "Notebook"}
)

// Seeder creates synthetic products through the product service.
type Seeder struct {
	service service.ProductService
	rnd     *rand.Rand
	logger  *slog.Logger
}

// NewSeeder returns a Seeder drawing values from rnd. A nil rnd uses a randomly seeded source.
func NewSeeder(svc service.ProductService, rnd *rand.Rand, logger *slog.Logger) *Seeder {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{
		service: svc,
		rnd:     rnd,
		logger:  logger.With("component", "seed"),
	}
}

// Run creates count products and stops at the first failure.
func (s *Seeder) Run(ctx context.Context, count int) error {
	for i := range count {
		input := s.next()
		created, err := s.service.Create(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to seed product %d of %d: %w", i+1, count, err)
		}
		s.logger.DebugContext(ctx, "Seeded product", "ID", created.ID, "Name", created.Name)
	}
	s.logger.InfoContext(ctx, "Seeding complete", "count", count)
	return nil
}

// next draws a name from the catalogue, a price in [1, 1000) with two decimals and a quantity in [0, 100).
func (s *Seeder) next() service.ProductInput {
	name := fmt.Sprintf("%s %s", adjectives[s.rnd.IntN(len(adjectives))], nouns[s.rnd.IntN(len(nouns))])
	price := math.Floor((1+s.rnd.Float64()*999)*100) / 100
	quantity := int32(s.rnd.IntN(100))
	return service.ProductInput{Name: &name, Price: &price, Quantity: &quantity}
}
