package resident

import (
	"strconv"

	dErrors "bims/pkg/domain-errors"
)

// requiredFields in the order they are reported when missing.
var requiredFields = []string{
	"surname", "firstName", "middleName", "gender", "birthdate", "birthplace",
	"purok", "maritalStatus", "bloodType", "occupation", "lengthOfStay",
	"monthlyIncome",
}

var validIncomeRanges = map[string]struct{}{
	"Less Than 5000":   {},
	"5000 To 10000":    {},
	"10000 To 20000":   {},
	"20000 To 50000":   {},
	"50000 To 100000":  {},
	"More Than 100000": {},
}

var validBloodTypes = map[string]struct{}{
	"A+": {}, "A-": {}, "B+": {}, "B-": {},
	"AB+": {}, "AB-": {}, "O+": {}, "O-": {},
}

// Validate gatekeeps a resident field map before persistence. It returns the
// input unchanged on success and never consumes a counter value for a
// rejected record (callers validate before allocating an ID).
func Validate(data map[string]string) (map[string]string, error) {
	for _, field := range requiredFields {
		if data[field] == "" {
			return nil, dErrors.Newf(dErrors.CodeValidation, "The %s field is required.", field)
		}
	}

	if _, err := strconv.Atoi(data["lengthOfStay"]); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Length of Stay must be a number.")
	}

	if _, ok := validIncomeRanges[data["monthlyIncome"]]; !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid monthly income range.")
	}

	if _, ok := validBloodTypes[data["bloodType"]]; !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid blood type.")
	}

	return data, nil
}
