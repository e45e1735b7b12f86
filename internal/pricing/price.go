package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// usdPriceSuffix ends the path of every USD price inside a terms record.
const usdPriceSuffix = ".pricePerUnit.USD"

// FindPrice streams the terms index at termsPath and returns the first USD
// price whose path contains sku. The price is returned as its literal text.
func FindPrice(ctx context.Context, sku, termsPath string) (lookup.Result[string], error) {
	if sku == "" {
		return lookup.NotFound[string]("empty SKU"), nil
	}

	var price string
	matched := false

	err := scanFile(ctx, termsPath, func(tok Token) bool {
		if tok.Kind != String && tok.Kind != Number {
			return false
		}
		if !strings.HasSuffix(tok.Prefix, usdPriceSuffix) || !strings.Contains(tok.Prefix, sku) {
			return false
		}
		price, matched = tok.StringValue()
		return matched
	})
	if err != nil {
		return lookup.Result[string]{}, err
	}
	if !matched {
		return lookup.NotFound[string](fmt.Sprintf("no on-demand USD price for SKU %s", sku)), nil
	}
	return lookup.Found(price), nil
}
