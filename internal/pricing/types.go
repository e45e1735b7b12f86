// Package pricing downloads, splits and streams the AWS EC2 price list to
// resolve on-demand hourly rates.
package pricing

import (
	"github.com/goccy/go-json"
)

// Default artifact names inside the configured data directory.
const (
	FullCatalogFile = "full_pricing_data.json"
	SKUIndexFile    = "products_data.json"
	TermsIndexFile  = "terms_data.json"
)

// DefaultCatalogURL is the public, unauthenticated EC2 price list.
const DefaultCatalogURL = "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonEC2/current/index.json"

// computeInstanceFamily is the productFamily of on-demand EC2 instance SKUs.
const computeInstanceFamily = "Compute Instance"

// catalogDocument is the shape of the AWS Price List API offer file as far
// as splitting is concerned. The two sub-documents are kept raw so they can
// be written out without being re-encoded.
type catalogDocument struct {
	FormatVersion   string          `json:"formatVersion"`
	OfferCode       string          `json:"offerCode"`
	Version         string          `json:"version"`
	PublicationDate string          `json:"publicationDate"`
	Products        json.RawMessage `json:"products"`
	Terms           struct {
		OnDemand json.RawMessage `json:"OnDemand"`
	} `json:"terms"`
}
