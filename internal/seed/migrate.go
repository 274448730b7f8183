package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cannashop/internal/models"
	"cannashop/internal/repositories"
)

// MigrationReport summarizes a catalog copy.
type MigrationReport struct {
	Copied     int
	Skipped    int
	ByCategory map[string]int
}

// Migrate copies every product of from into to. Products without a code get one
// generated from their category and title; codes already present in to are skipped.
// The target store assigns new identities.
func Migrate(ctx context.Context, from, to repositories.ProductRepository) (*MigrationReport, error) {
	products, err := from.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source catalog: %w", err)
	}

	report := &MigrationReport{ByCategory: map[string]int{}}
	seen := make(map[string]bool, len(products))
	for i, p := range products {
		if p.Code == "" {
			p.Code = GenerateCode(p, i)
		}
		if seen[p.Code] {
			p.Code = fmt.Sprintf("%s-%d", p.Code, i)
		}
		seen[p.Code] = true

		_, err := to.GetByCode(ctx, p.Code)
		switch {
		case err == nil:
			log.Printf("Skipping %s: code already migrated", p.Code)
			report.Skipped++
			continue
		case !errors.Is(err, repositories.ErrNotFound):
			return report, fmt.Errorf("failed to check code %s: %w", p.Code, err)
		}

		p.ID = ""
		if p.Thumbnails == nil {
			p.Thumbnails = []string{}
		}
		if p.Specs == nil {
			p.Specs = map[string]any{}
		}
		if err := to.Create(ctx, &p); err != nil {
			return report, fmt.Errorf("failed to copy product %s: %w", p.Code, err)
		}
		report.Copied++
		report.ByCategory[p.Category]++
	}

	log.Printf("Migration complete: %d copied, %d skipped", report.Copied, report.Skipped)
	return report, nil
}

// GenerateCode builds a code like FLO-OGKU-001 from the category, the first four
// characters of the title and the product's position.
func GenerateCode(p models.Product, index int) string {
	prefix := "PRD"
	if p.Category != "" {
		prefix = strings.ToUpper(firstRunes(p.Category, 3))
	}
	title := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToUpper(firstRunes(p.Title, 4)))
	return fmt.Sprintf("%s-%s-%03d", prefix, title, index+1)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
