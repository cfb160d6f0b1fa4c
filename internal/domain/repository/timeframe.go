package repository

import (
	"fmt"

	"DistroDash/internal/domain/models"
)

// Dataset names a stored bar series variant.
type Dataset string

const (
	// DatasetAll holds every bar.
	DatasetAll Dataset = "all"
	// DatasetNonEvents excludes bars around scheduled announcements.
	DatasetNonEvents Dataset = "nonevents"
)

func ParseDataset(s string) (Dataset, error) {
	switch d := Dataset(s); d {
	case DatasetAll, DatasetNonEvents:
		return d, nil
	case "":
		return DatasetAll, nil
	default:
		return "", fmt.Errorf("unknown dataset %q", s)
	}
}

// NormalizeInterval converts a raw string to a supported interval or the fallback.
func NormalizeInterval(s string, fallback models.Interval) models.Interval {
	iv := models.Interval(s)
	if iv.IsValid() {
		return iv
	}
	return fallback
}
