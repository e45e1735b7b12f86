package pricing

import (
	"fmt"
	"sort"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// regionLocations maps region codes to the location titles used by the EC2
// offer file. Most European regions keep the legacy "EU" prefix; regions
// launched later carry "Europe".
var regionLocations = map[string]string{
	"af-south-1":     "Africa (Cape Town)",
	"ap-east-1":      "Asia Pacific (Hong Kong)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-northeast-3": "Asia Pacific (Osaka)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-south-2":     "Asia Pacific (Hyderabad)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-southeast-3": "Asia Pacific (Jakarta)",
	"ap-southeast-4": "Asia Pacific (Melbourne)",
	"ca-central-1":   "Canada (Central)",
	"ca-west-1":      "Canada West (Calgary)",
	"eu-central-1":   "EU (Frankfurt)",
	"eu-central-2":   "Europe (Zurich)",
	"eu-north-1":     "EU (Stockholm)",
	"eu-south-1":     "EU (Milan)",
	"eu-south-2":     "Europe (Spain)",
	"eu-west-1":      "EU (Ireland)",
	"eu-west-2":      "EU (London)",
	"eu-west-3":      "EU (Paris)",
	"il-central-1":   "Israel (Tel Aviv)",
	"me-central-1":   "Middle East (UAE)",
	"me-south-1":     "Middle East (Bahrain)",
	"sa-east-1":      "South America (Sao Paulo)",
	"us-east-1":      "US East (N. Virginia)",
	"us-east-2":      "US East (Ohio)",
	"us-gov-east-1":  "AWS GovCloud (US-East)",
	"us-gov-west-1":  "AWS GovCloud (US-West)",
	"us-west-1":      "US West (N. California)",
	"us-west-2":      "US West (Oregon)",
}

// LocationTitle returns the offer-file location title for a region code.
func LocationTitle(regionCode string) lookup.Result[string] {
	if title, ok := regionLocations[regionCode]; ok {
		return lookup.Found(title)
	}
	return lookup.NotFound[string](fmt.Sprintf("unknown region %q", regionCode))
}

// RegionCodes returns every region code with a known location title, sorted.
func RegionCodes() []string {
	codes := make([]string, 0, len(regionLocations))
	for code := range regionLocations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
