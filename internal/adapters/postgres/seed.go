package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aretw0/bakecake/pkg/domain"
)

// SeedCatalog upserts the given categories and options into the database.
// Existing rows are updated in place, so re-running the seed after a menu
// edit is safe; rows removed from the source are left untouched.
func SeedCatalog(ctx context.Context, db *gorm.DB, categories []domain.CategoryWithOptions) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cat := range categories {
			cm := categoryModel{
				ID:          cat.ID,
				Title:       cat.Title,
				Mandatory:   cat.Mandatory,
				ChoiceOrder: cat.ChoiceOrder,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"title", "mandatory", "choice_order"}),
			}).Create(&cm).Error
			if err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Title, err)
			}

			for _, opt := range cat.Options {
				om := optionModel{
					ID:         opt.ID,
					CategoryID: cat.ID,
					Name:       opt.Name,
					Price:      opt.Price,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"category_id", "name", "price"}),
				}).Create(&om).Error
				if err != nil {
					return fmt.Errorf("failed to seed option %q: %w", opt.Name, err)
				}
			}
		}
		return nil
	})
}
