// Package catalogfile loads the option catalog from a YAML file and serves
// it as an immutable ports.Catalog. The file is the bakery's menu; it is read
// once at startup.
package catalogfile

import (
	"fmt"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/bakecake/internal/adapters/memory"
	"github.com/aretw0/bakecake/pkg/domain"
)

// categoryDTO is the on-disk shape of one category. YAML is decoded into
// generic maps first and then mapped onto this struct, so unknown keys fail
// loudly instead of being silently dropped.
type categoryDTO struct {
	ID          int64       `mapstructure:"id"`
	Title       string      `mapstructure:"title"`
	Mandatory   bool        `mapstructure:"mandatory"`
	ChoiceOrder int         `mapstructure:"choice_order"`
	Options     []optionDTO `mapstructure:"options"`
}

type optionDTO struct {
	ID    int64  `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Price int64  `mapstructure:"price"`
}

type catalogDTO struct {
	Categories []categoryDTO `mapstructure:"categories"`
}

// Load reads and validates the catalog file.
func Load(path string) (*memory.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*memory.Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid catalog yaml: %w", err)
	}

	var dto catalogDTO
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &dto,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid catalog structure: %w", err)
	}

	categories, err := toDomain(dto)
	if err != nil {
		return nil, err
	}
	return memory.NewCatalog(categories), nil
}

func toDomain(dto catalogDTO) ([]domain.CategoryWithOptions, error) {
	if len(dto.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}

	seenCategories := make(map[int64]bool)
	seenOptions := make(map[int64]bool)

	out := make([]domain.CategoryWithOptions, 0, len(dto.Categories))
	for _, cat := range dto.Categories {
		switch {
		case cat.ID <= 0:
			return nil, fmt.Errorf("category %q: id must be positive", cat.Title)
		case cat.Title == "":
			return nil, fmt.Errorf("category %d: title is required", cat.ID)
		case seenCategories[cat.ID]:
			return nil, fmt.Errorf("duplicate category id %d", cat.ID)
		case cat.Mandatory && len(cat.Options) == 0:
			return nil, fmt.Errorf("category %q: mandatory but has no options", cat.Title)
		}
		seenCategories[cat.ID] = true

		cwo := domain.CategoryWithOptions{
			Category: domain.Category{
				ID:          cat.ID,
				Title:       cat.Title,
				Mandatory:   cat.Mandatory,
				ChoiceOrder: cat.ChoiceOrder,
			},
		}
		for _, opt := range cat.Options {
			switch {
			case opt.ID <= 0:
				return nil, fmt.Errorf("category %q: option %q: id must be positive", cat.Title, opt.Name)
			case opt.Name == "":
				return nil, fmt.Errorf("category %q: option %d: name is required", cat.Title, opt.ID)
			case opt.Price < 0:
				return nil, fmt.Errorf("category %q: option %q: negative price", cat.Title, opt.Name)
			case seenOptions[opt.ID]:
				return nil, fmt.Errorf("duplicate option id %d", opt.ID)
			}
			seenOptions[opt.ID] = true

			cwo.Options = append(cwo.Options, domain.Option{
				ID:         opt.ID,
				CategoryID: cat.ID,
				Name:       opt.Name,
				Price:      opt.Price,
			})
		}
		out = append(out, cwo)
	}

	// Stable file order for equal choice orders.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChoiceOrder < out[j].ChoiceOrder
	})
	return out, nil
}
