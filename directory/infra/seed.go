package infra

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"employee-directory/directory/domain"
)

var (
	seedDepartments = []string{"Engineering", "Sales", "HR", "Design"}
	seedPositions   = []string{"Manager", "Developer", "Executive", "Designer"}
	seedLocations   = []string{"New York", "San Francisco", "Remote"}
	seedStatuses    = []string{"ACTIVE", "NOT_STARTED", "TERMINATED"}
)

// Seed preenche um store vazio com n funcionários sintéticos distribuídos
// entre os tenants. Store com dados não é tocado; devolve quantos inseriu.
// rng nil usa uma fonte aleatória.
func Seed(ctx context.Context, w domain.RecordWriter, tenants []string, n int, rng *rand.Rand) (int, error) {
	if n <= 0 || len(tenants) == 0 {
		return 0, nil
	}
	count, err := w.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	pick := func(xs []string) string { return xs[rng.IntN(len(xs))] }

	rows := make([]domain.Employee, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, domain.Employee{
			ID:           uuid.NewString(),
			OrgID:        pick(tenants),
			FirstName:    fmt.Sprintf("John%d", i),
			LastName:     "Doe",
			ContactEmail: domain.Ptr(fmt.Sprintf("john%d@example.com", i)),
			ContactPhone: domain.Ptr("+1234567890"),
			Department:   pick(seedDepartments),
			Position:     pick(seedPositions),
			Location:     domain.Ptr(pick(seedLocations)),
			Status:       domain.Ptr(pick(seedStatuses)),
		})
	}
	if err := w.Insert(ctx, rows...); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return len(rows), nil
}
