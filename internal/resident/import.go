package resident

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"bims/internal/idgen"
	dErrors "bims/pkg/domain-errors"
)

// columnToField maps CSV header names to record field names.
var columnToField = map[string]string{
	"Surname":                 "surname",
	"First Name":              "firstName",
	"Middle Name":             "middleName",
	"Gender":                  "gender",
	"Birthdate":               "birthdate",
	"Birthplace":              "birthplace",
	"Purok":                   "purok",
	"Marital Status":          "maritalStatus",
	"Total Household Members": "totalHouseholdMembers",
	"Blood Type":              "bloodType",
	"Occupation":              "occupation",
	"Length of Stay":          "lengthOfStay",
	"Monthly Income":          "monthlyIncome",
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCSV reads a header-mapped CSV of residents and creates one record
// per row. Rows missing a surname or with a mismatched column count are
// skipped and logged; only a fatal read error fails the batch. Age is computed from the birthdate, defaulting to 0
// when the birthdate does not parse.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Ragged rows are a per-row problem, not a batch failure.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read CSV header")
	}

	var result ImportResult
	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read CSV row")
		}

		if len(row) != len(header) {
			s.logger.Warn("skipping import row with mismatched column count",
				"row", rowNum, "want", len(header), "got", len(row))
			result.Skipped++
			continue
		}

		fields := make(map[string]string)
		for i, column := range header {
			if field, ok := columnToField[column]; ok {
				fields[field] = row[i]
			}
		}

		if fields["surname"] == "" {
			s.logger.Warn("skipping import row without surname", "row", rowNum)
			result.Skipped++
			continue
		}

		fields["age"] = strconv.Itoa(ageFromBirthdate(fields["birthdate"], time.Now()))

		id, err := s.ids.NextID(ctx, idgen.CounterResident, idgen.WidthResident)
		if err != nil {
			return result, err
		}
		fields["id"] = id

		if err := s.store.PutFields(ctx, EntityType, id, fields); err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save imported resident")
		}
		result.Imported++
	}
}

// ageFromBirthdate computes whole years elapsed, 0 when the date is invalid.
func ageFromBirthdate(birthdate string, now time.Time) int {
	born, err := time.Parse("2006-01-02", birthdate)
	if err != nil {
		return 0
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
