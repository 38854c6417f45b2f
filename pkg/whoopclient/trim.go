// whoopclient/trim.go
package whoopclient

// trimmedFields is the allow-list of record fields kept for the downstream
// consumer: identity, time bounds and the score/physiological metrics.
var trimmedFields = []string{
	"id",
	"user_id",
	"cycle_id",
	"sleep_id",
	"sport_id",
	"start",
	"end",
	"created_at",
	"updated_at",
	"timezone_offset",
	"score",
	"score_state",
	"strain",
	"kilojoule",
	"average_heart_rate",
	"max_heart_rate",
	"recovery_score",
	"resting_heart_rate",
	"hrv_rmssd_milli",
	"spo2_percentage",
	"skin_temp_celsius",
	"respiratory_rate",
	"sleep_performance_percentage",
	"nap",
}

// TrimRecord projects a record down to the allow-listed fields. If none of the
// allow-listed fields are present, the original record is returned unmodified
// so a non-empty input never collapses into an empty object.
func TrimRecord(record map[string]interface{}) map[string]interface{} {
	trimmed := make(map[string]interface{})
	for _, field := range trimmedFields {
		if v, ok := record[field]; ok {
			trimmed[field] = v
		}
	}

	if len(trimmed) == 0 {
		return record
	}
	return trimmed
}
