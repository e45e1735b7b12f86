package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// oregonCatalog is a minimal offer file with one t3.micro product and its
// on-demand term.
const oregonCatalog = `{
  "formatVersion": "v1.0",
  "offerCode": "AmazonEC2",
  "version": "20251218235654",
  "publicationDate": "2025-12-18T23:56:54Z",
  "products": {
    "ABC123": {
      "sku": "ABC123",
      "productFamily": "Compute Instance",
      "attributes": {
        "location": "US West (Oregon)",
        "instanceType": "t3.micro",
        "operatingSystem": "Linux",
        "tenancy": "Shared"
      }
    }
  },
  "terms": {
    "OnDemand": {
      "ABC123": {
        "ABC123.JRTCKXETXF": {
          "offerTermCode": "JRTCKXETXF",
          "sku": "ABC123",
          "priceDimensions": {
            "ABC123.JRTCKXETXF.6YS6EN2CT7": {
              "unit": "Hrs",
              "pricePerUnit": {"USD": "0.0104"}
            }
          }
        }
      }
    },
    "Reserved": {
      "ABC123": {}
    }
  }
}`

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
