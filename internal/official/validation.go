package official

import (
	"regexp"
	"strconv"

	dErrors "bims/pkg/domain-errors"
)

// requiredFields in the order they are reported when missing.
var requiredFields = []string{"name", "age", "position", "description", "contactNo"}

var contactNoPattern = regexp.MustCompile(`^\d{10}$`)

var validPositions = map[string]struct{}{
	"Barangay Captain":                 {},
	"Barangay Councilor":               {},
	"Barangay Secretary":               {},
	"Barangay Treasurer":               {},
	"Barangay Police Officer":          {},
	"Sangguniang Kabataan Chairperson": {},
	"Sangguniang Kabataan Council":     {},
	"Sangguniang Kabataan Secretary":   {},
	"Sangguniang Kabataan Treasurer":   {},
	"Peacekeeping Committee":           {},
}

// Validate gatekeeps an official field map before persistence, returning the
// input unchanged on success.
func Validate(data map[string]string) (map[string]string, error) {
	for _, field := range requiredFields {
		if data[field] == "" {
			return nil, dErrors.Newf(dErrors.CodeValidation, "The %s field is required.", field)
		}
	}

	if _, err := strconv.Atoi(data["age"]); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Age must be a number.")
	}

	if !contactNoPattern.MatchString(data["contactNo"]) {
		return nil, dErrors.New(dErrors.CodeValidation, "Contact Number must be a 10-digit number.")
	}

	if _, ok := validPositions[data["position"]]; !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid position.")
	}

	return data, nil
}
