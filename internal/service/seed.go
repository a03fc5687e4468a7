package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/pitch-booking/internal/model"
)

// DefaultPitches is the catalog used when a store is seeded without a
// catalog file.  Pitches receive identifiers 1..4 in this order.
func DefaultPitches() []model.Pitch {
	return []model.Pitch{
		{
			Name:         "Main Pitch",
			Location:     "Sports Complex A",
			PricePerHour: 50,
			ImageURL:     "https://images.unsplash.com/photo-1575361204480-aadea25e6e68?w=800",
			Description:  "Professional-grade football pitch with artificial turf, perfect for matches and training.",
		},
		{
			Name:         "Training Pitch",
			Location:     "Sports Complex A",
			PricePerHour: 35,
			ImageURL:     "https://images.unsplash.com/photo-1574629810360-7efbbe195018?w=800",
			Description:  "Smaller training pitch ideal for practice sessions and small-sided games.",
		},
		{
			Name:         "Community Pitch",
			Location:     "Community Center",
			PricePerHour: 25,
			ImageURL:     "https://images.unsplash.com/photo-1575361204480-aadea25e6e68?w=800",
			Description:  "Affordable community pitch with natural grass, great for casual games.",
		},
		{
			Name:         "Elite Pitch",
			Location:     "Elite Sports Academy",
			PricePerHour: 75,
			ImageURL:     "https://images.unsplash.com/photo-1574629810360-7efbbe195018?w=800",
			Description:  "Premium pitch with floodlights, changing rooms, and professional facilities.",
		},
	}
}

type catalogFile struct {
	Pitches []model.Pitch `yaml:"pitches"`
}

// LoadCatalogFile reads a YAML seed catalog:
//
//	pitches:
//	  - name: Main Pitch
//	    location: Sports Complex A
//	    price_per_hour: 50
//
// Environment references such as ${IMAGE_HOST} are expanded before parsing.
// An empty path returns DefaultPitches.
func LoadCatalogFile(path string) ([]model.Pitch, error) {
	if path == "" {
		return DefaultPitches(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(cf.Pitches) == 0 {
		return nil, fmt.Errorf("catalog %s: no pitches", path)
	}
	for i, p := range cf.Pitches {
		if err := validatePitch(p); err != nil {
			return nil, fmt.Errorf("catalog %s: pitch %d: %w", path, i+1, err)
		}
	}
	return cf.Pitches, nil
}
