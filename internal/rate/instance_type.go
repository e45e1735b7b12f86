package rate

import (
	"strings"

	"github.com/rshade/aws-rate-hook/internal/lookup"
)

// instanceTypeField is the custom field that carries the instance type.
const instanceTypeField = "instance_type"

// parseInstanceType splits an EC2 instance type into family and size.
// Example: "t3.micro" → ("t3", "micro")
// Returns empty strings if the format is invalid.
func parseInstanceType(instanceType string) (family, size string) {
	parts := strings.SplitN(instanceType, ".", 2)
	if len(parts) != 2 {
		return "", ""
	}
	if parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}

func instanceTypeFromServer(req Request) lookup.Result[string] {
	if req.Server == nil || req.Server.InstanceType == "" {
		return lookup.NotFound[string]("no server record instance type")
	}
	return lookup.Found(req.Server.InstanceType)
}

func instanceTypeFromFields(req Request) lookup.Result[string] {
	for _, fv := range req.FieldValues {
		if fv.Field == instanceTypeField && fv.Value != "" {
			return lookup.Found(fv.Value)
		}
	}
	return lookup.NotFound[string]("no instance_type field value")
}

// instanceTypeFromPreconfigurations takes the first set carrying an
// instance_type field. Its value is used even when empty, so later sets are
// never consulted once one declares the field.
func instanceTypeFromPreconfigurations(req Request) lookup.Result[string] {
	for _, set := range req.Preconfigurations {
		for _, fv := range set.Values {
			if fv.Field != instanceTypeField {
				continue
			}
			if fv.Value == "" {
				return lookup.NotFound[string]("preconfiguration " + set.Name + " has an empty instance_type")
			}
			return lookup.Found(fv.Value)
		}
	}
	return lookup.NotFound[string]("no preconfiguration carries an instance_type")
}

// resolveInstanceType tries the server record, then custom field values,
// then preconfigurations.
func resolveInstanceType(req Request) lookup.Result[string] {
	return lookup.Or(instanceTypeFromServer(req),
		func() lookup.Result[string] { return instanceTypeFromFields(req) },
		func() lookup.Result[string] { return instanceTypeFromPreconfigurations(req) },
	)
}
