package pricing

import (
	"context"
	"fmt"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// skuDepth is the depth of the per-SKU objects directly under the root of the SKU index.
const skuDepth = 1

// requiredMatches is the number of attributes that must agree for a SKU to match.
const requiredMatches = 3

// scanState is the state of the SKU scanner.
type scanState int

const (
	// scanning: between SKU objects.
	scanning scanState = iota
	// accumulating: inside a SKU object, collecting its attributes.
	accumulating
)

func (s scanState) String() string {
	if s == accumulating {
		return "accumulating"
	}
	return "scanning"
}

// skuAccumulator gathers what has been seen inside one SKU object. Fields may
// arrive in any order; nothing is evaluated until the object closes.
type skuAccumulator struct {
	sku           string
	familyMatch   bool
	locationMatch bool
	instanceMatch bool
}

func (a skuAccumulator) matches() int {
	n := 0
	for _, ok := range []bool{a.familyMatch, a.locationMatch, a.instanceMatch} {
		if ok {
			n++
		}
	}
	return n
}

// skuScanner is the state machine behind FindSKU.
type skuScanner struct {
	location     string
	instanceType string

	state   scanState
	acc     skuAccumulator
	matched bool
}

// feed advances the scanner by one token and reports whether a match was found.
func (s *skuScanner) feed(tok Token) bool {
	switch s.state {
	case scanning:
		if tok.Kind == StartMap && tok.Depth == skuDepth {
			s.state = accumulating
			s.acc = skuAccumulator{}
		}
	case accumulating:
		if tok.Kind == EndMap && tok.Depth == skuDepth {
			// A product without a sku field cannot be priced; keep scanning.
			if s.acc.matches() == requiredMatches && s.acc.sku != "" {
				s.matched = true
				return true
			}
			s.state = scanning
			return false
		}
		s.observe(tok)
	}
	return false
}

func (s *skuScanner) observe(tok Token) {
	if tok.Kind != String {
		return
	}
	value, _ := tok.StringValue()
	switch tok.Key {
	case "sku":
		s.acc.sku = value
	case "productFamily":
		if value == computeInstanceFamily {
			s.acc.familyMatch = true
		}
	case "location":
		if value == s.location {
			s.acc.locationMatch = true
		}
	case "instanceType":
		if value == s.instanceType {
			s.acc.instanceMatch = true
		}
	}
}

// FindSKU streams the SKU index at skuPath and returns the SKU of the first
// product whose productFamily is "Compute Instance" and whose location and
// instanceType equal the requested values and that carries a sku. Later
// products that also match are never examined.
func FindSKU(ctx context.Context, location, instanceType, skuPath string) (lookup.Result[string], error) {
	s := &skuScanner{location: location, instanceType: instanceType}
	if err := scanFile(ctx, skuPath, s.feed); err != nil {
		return lookup.Result[string]{}, err
	}
	if !s.matched {
		return lookup.NotFound[string](fmt.Sprintf(
			"no Compute Instance SKU for %s in %s", instanceType, location)), nil
	}
	return lookup.Found(s.acc.sku), nil
}
