package resident

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

func validResident() map[string]string {
	return map[string]string{
		"surname":       "Nisnisan",
		"firstName":     "Loren",
		"middleName":    "Bliss",
		"gender":        "Female",
		"birthdate":     "1998-04-12",
		"birthplace":    "Davao City",
		"purok":         "Purok 3",
		"maritalStatus": "Single",
		"bloodType":     "O+",
		"occupation":    "Teacher",
		"lengthOfStay":  "12",
		"monthlyIncome": "10000 To 20000",
	}
}

type ResidentServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
}

func TestResidentServiceSuite(t *testing.T) {
	suite.Run(t, new(ResidentServiceSuite))
}

func (s *ResidentServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	fixed := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	alloc := idgen.New(s.store, idgen.WithClock(func() time.Time { return fixed }))
	s.service = NewService(s.store, alloc, slog.New(slog.DiscardHandler))
}

func (s *ResidentServiceSuite) TestValidation() {
	ctx := context.Background()

	s.Run("each missing required field is named", func() {
		for _, field := range requiredFields {
			data := validResident()
			delete(data, field)

			_, err := s.service.Create(ctx, data)
			s.Error(err, "field %s", field)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Contains(err.Error(), fmt.Sprintf("The %s field is required.", field))
		}
	})

	s.Run("non-numeric length of stay is rejected", func() {
		data := validResident()
		data["lengthOfStay"] = "twelve"
		_, err := s.service.Create(ctx, data)
		s.Error(err)
		s.Contains(err.Error(), "Length of Stay must be a number.")
	})

	s.Run("out-of-enum blood type is rejected", func() {
		data := validResident()
		data["bloodType"] = "C+"
		_, err := s.service.Create(ctx, data)
		s.Error(err)
		s.Contains(err.Error(), "Invalid blood type.")
	})

	s.Run("out-of-enum monthly income is rejected", func() {
		data := validResident()
		data["monthlyIncome"] = "a lot"
		_, err := s.service.Create(ctx, data)
		s.Error(err)
		s.Contains(err.Error(), "Invalid monthly income range.")
	})

	s.Run("rejected records never consume a sequence number", func() {
		id, err := s.service.Create(ctx, validResident())
		s.NoError(err)
		s.Equal("2025-00001", id)
	})
}

func (s *ResidentServiceSuite) TestRoundTrip() {
	ctx := context.Background()

	data := validResident()
	id, err := s.service.Create(ctx, data)
	s.Require().NoError(err)

	fetched, err := s.service.Get(ctx, id)
	s.Require().NoError(err)

	s.Equal(id, fetched["id"])
	for field, value := range data {
		s.Equal(value, fetched[field], "field %s", field)
	}
	s.Len(fetched, len(data)+1)
}

func (s *ResidentServiceSuite) TestUpdate() {
	ctx := context.Background()

	id, err := s.service.Create(ctx, validResident())
	s.Require().NoError(err)

	s.Run("missing resident is not found", func() {
		err := s.service.Update(ctx, "2025-99999", map[string]string{"occupation": "Nurse"})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("partial update touches only supplied fields", func() {
		s.Require().NoError(s.service.Update(ctx, id, map[string]string{"occupation": "Nurse"}))

		fetched, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal("Nurse", fetched["occupation"])
		s.Equal("Nisnisan", fetched["surname"])
	})

	s.Run("id is immutable", func() {
		s.Require().NoError(s.service.Update(ctx, id, map[string]string{"id": "2025-77777"}))

		fetched, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal(id, fetched["id"])
	})
}

func (s *ResidentServiceSuite) TestListAndSearch() {
	ctx := context.Background()

	_, err := s.service.Create(ctx, validResident())
	s.Require().NoError(err)

	other := validResident()
	other["surname"] = "Delacruz"
	other["occupation"] = "Fisherman"
	_, err = s.service.Create(ctx, other)
	s.Require().NoError(err)

	s.Run("no search returns everything", func() {
		residents, err := s.service.List(ctx, "")
		s.NoError(err)
		s.Len(residents, 2)
	})

	s.Run("search is case-insensitive across all fields", func() {
		residents, err := s.service.List(ctx, "FISHER")
		s.NoError(err)
		s.Len(residents, 1)
		s.Equal("Delacruz", residents[0]["surname"])
	})

	s.Run("search with no matches returns empty", func() {
		residents, err := s.service.List(ctx, "no-such-value")
		s.NoError(err)
		s.Empty(residents)
	})
}

func (s *ResidentServiceSuite) TestDelete() {
	ctx := context.Background()

	id, err := s.service.Create(ctx, validResident())
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(ctx, id))

	_, err = s.service.Get(ctx, id)
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// Deleted IDs are not reused.
	next, err := s.service.Create(ctx, validResident())
	s.NoError(err)
	s.NotEqual(id, next)
}

func (s *ResidentServiceSuite) TestImportCSV() {
	ctx := context.Background()

	csvDoc := strings.Join([]string{
		"Surname,First Name,Middle Name,Gender,Birthdate,Birthplace,Purok,Marital Status,Total Household Members,Blood Type,Occupation,Length of Stay,Monthly Income",
		"Nisnisan,Loren,Bliss,Female,1998-04-12,Davao City,Purok 3,Single,4,O+,Teacher,12,10000 To 20000",
		",Ghost,Row,Male,1990-01-01,Nowhere,Purok 1,Single,1,A+,None,1,Less Than 5000",
		"Truncated,Row",
		"Delacruz,Juan,Ponce,Male,not-a-date,Cebu City,Purok 2,Married,6,B+,Farmer,30,5000 To 10000",
	}, "\n")

	result, err := s.service.ImportCSV(ctx, strings.NewReader(csvDoc))
	s.Require().NoError(err)
	s.Equal(2, result.Imported)
	s.Equal(2, result.Skipped)

	residents, err := s.service.List(ctx, "")
	s.Require().NoError(err)
	s.Len(residents, 2)

	first, err := s.service.Get(ctx, "2025-00001")
	s.Require().NoError(err)
	s.Equal("Nisnisan", first["surname"])
	s.Equal("4", first["totalHouseholdMembers"])
	s.NotEmpty(first["age"])
	s.NotEqual("0", first["age"])

	second, err := s.service.Get(ctx, "2025-00002")
	s.Require().NoError(err)
	s.Equal("Delacruz", second["surname"])
	// Invalid birthdate defaults the computed age to zero.
	s.Equal("0", second["age"])
}

func (s *ResidentServiceSuite) TestImportCSVBadHeader() {
	ctx := context.Background()

	_, err := s.service.ImportCSV(ctx, strings.NewReader(""))
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
