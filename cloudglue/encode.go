package cloudglue

import "encoding/json"

func encodeCoverageEvent(ev CoverageEvent) ([]byte, error) {
	return json.Marshal(ev)
}
