package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MountAngle is a surface tilt or azimuth in degrees. A tracked (non-fixed)
// mount has no single angle and is serialized as the literal string "null",
// which is what downstream consumers of site-metadata.json expect.
type MountAngle struct {
	Degrees float64
	Fixed   bool
}

// FixedAngle returns a fixed-mount angle.
func FixedAngle(deg float64) MountAngle {
	return MountAngle{Degrees: deg, Fixed: true}
}

// TrackedAngle returns the "not fixed" marker for tracked mounts.
func TrackedAngle() MountAngle {
	return MountAngle{}
}

func (a MountAngle) MarshalJSON() ([]byte, error) {
	if !a.Fixed {
		return []byte(`"null"`), nil
	}
	return []byte(strconv.FormatFloat(a.Degrees, 'f', -1, 64)), nil
}

func (a *MountAngle) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `"null"` {
		*a = TrackedAngle()
		return nil
	}
	var deg float64
	if err := json.Unmarshal(b, &deg); err != nil {
		return fmt.Errorf("mount angle must be a number or \"null\": %w", err)
	}
	*a = FixedAngle(deg)
	return nil
}

// Location holds the static facts about a group's deployment site.
type Location struct {
	Label          string     `json:"label"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	Elevation      float64    `json:"elevation"`
	SurfaceTilt    MountAngle `json:"surface_tilt"`
	SurfaceAzimuth MountAngle `json:"surface_azimuth"`
}

// SiteDocument is the per-group site-metadata document: static site facts
// plus the sorted, deduplicated list of excluded calendar days (ISO dates).
// It is created once and never overwritten by a sync; only the snow-day
// list is mutated afterwards.
type SiteDocument struct {
	Location Location `json:"location"`
	SnowDays []string `json:"snow_days"`
}
