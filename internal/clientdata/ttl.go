package clientdata

import "time"

// TTL constants for each data type.
// These are added to the current time when storing to calculate expires_at.
const (
	TTLDemographics = 30 * 24 * time.Hour // census-like data rarely changes
	TTLCompetitors  = 24 * time.Hour
	TTLEconomic     = 24 * time.Hour
)

// TTLFor returns the TTL of a data type, one day when unknown.
func TTLFor(dataType string) time.Duration {
	if dataType == DataTypeDemographics {
		return TTLDemographics
	}
	return 24 * time.Hour
}
