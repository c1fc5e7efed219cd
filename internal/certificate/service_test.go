package certificate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

type CertificateServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
}

func TestCertificateServiceSuite(t *testing.T) {
	suite.Run(t, new(CertificateServiceSuite))
}

func (s *CertificateServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	fixed := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	alloc := idgen.New(s.store, idgen.WithClock(func() time.Time { return fixed }))
	s.service = NewService(s.store, alloc)
}

func (s *CertificateServiceSuite) request(username string, req Request) string {
	id, err := s.service.Request(context.Background(), username, req)
	s.Require().NoError(err)
	return id
}

func (s *CertificateServiceSuite) TestRequestValidation() {
	ctx := context.Background()

	s.Run("type is required", func() {
		_, err := s.service.Request(ctx, "dela.juan.30", Request{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "Certificate type is required")
	})

	s.Run("unknown type is rejected", func() {
		_, err := s.service.Request(ctx, "dela.juan.30", Request{CertificateType: "barangayParking"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("guardianship needs child name and relationship", func() {
		_, err := s.service.Request(ctx, "dela.juan.30", Request{
			CertificateType: "barangayGuardianship",
			ChildName:       "Bea",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("solo parent needs child name and parent", func() {
		_, err := s.service.Request(ctx, "dela.juan.30", Request{
			CertificateType: "barangaySoloParent",
			FatherOrMother:  "Mother",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("death needs deceased name and age", func() {
		_, err := s.service.Request(ctx, "dela.juan.30", Request{
			CertificateType: "barangayDeath",
			DeadName:        "Pedro Santos",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("plain clearance needs no details", func() {
		id, err := s.service.Request(ctx, "dela.juan.30", Request{CertificateType: "barangayClearance"})
		s.Require().NoError(err)
		s.Equal("2025-00001", id)
	})
}

func (s *CertificateServiceSuite) TestUnusedDetailFieldsStoredEmpty() {
	ctx := context.Background()
	id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})

	fields, err := s.store.GetAll(ctx, EntityType, id)
	s.Require().NoError(err)
	for _, key := range []string{"childName", "relationship", "fatherOrMother", "deadName", "deadAge"} {
		val, ok := fields[key]
		s.True(ok, "key %s must be present", key)
		s.Empty(val)
	}
	s.Equal(StatusPending, fields["status"])
	s.Equal("dela.juan.30", fields["username"])
	s.Equal(id, fields["certificateId"])
}

func (s *CertificateServiceSuite) TestOwnershipIsolation() {
	ctx := context.Background()
	id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})

	s.Run("another user cannot update", func() {
		err := s.service.Update(ctx, "maria.santos", id, Request{CertificateType: "barangayIndigency"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "must mask as not found, got %v", err)
	})

	s.Run("another user cannot cancel", func() {
		err := s.service.Cancel(ctx, "maria.santos", id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("another user cannot delete", func() {
		err := s.service.Delete(ctx, "maria.santos", id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		fields, ferr := s.store.GetAll(ctx, EntityType, id)
		s.Require().NoError(ferr)
		s.NotEmpty(fields, "record must survive a foreign delete attempt")
	})

	s.Run("listings stay per owner", func() {
		own, err := s.service.ListOwn(ctx, "dela.juan.30")
		s.Require().NoError(err)
		s.Len(own, 1)

		other, err := s.service.ListOwn(ctx, "maria.santos")
		s.Require().NoError(err)
		s.Empty(other)
	})
}

func (s *CertificateServiceSuite) TestCancelGating() {
	ctx := context.Background()

	s.Run("pending cancels and removes the record", func() {
		id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})
		s.Require().NoError(s.service.Cancel(ctx, "dela.juan.30", id))

		fields, err := s.store.GetAll(ctx, EntityType, id)
		s.Require().NoError(err)
		s.Empty(fields)
	})

	for _, status := range []string{StatusProcessing, StatusReadyForPickup} {
		s.Run("cancel blocked at "+status, func() {
			id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})
			s.Require().NoError(s.service.UpdateStatus(ctx, id, status))

			err := s.service.Cancel(ctx, "dela.juan.30", id)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

			fields, ferr := s.store.GetAll(ctx, EntityType, id)
			s.Require().NoError(ferr)
			s.Equal(status, fields["status"], "record must be unchanged")
		})
	}

	s.Run("cancel blocked after completion via ownership mask", func() {
		id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})
		s.Require().NoError(s.service.UpdateStatus(ctx, id, StatusCompleted))

		err := s.service.Cancel(ctx, "dela.juan.30", id)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CertificateServiceSuite) TestUpdateGating() {
	ctx := context.Background()
	id := s.request("dela.juan.30", Request{
		CertificateType: "barangayGuardianship",
		ChildName:       "Bea",
		Relationship:    "Aunt",
	})

	s.Run("pending updates succeed", func() {
		err := s.service.Update(ctx, "dela.juan.30", id, Request{
			CertificateType: "barangaySoloParent",
			ChildName:       "Bea",
			FatherOrMother:  "Mother",
		})
		s.Require().NoError(err)

		cert, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal("barangaySoloParent", cert.CertificateType)
		s.Equal("Mother", cert.FatherOrMother)
	})

	s.Run("in-process certificates reject edits", func() {
		s.Require().NoError(s.service.UpdateStatus(ctx, id, StatusProcessing))

		err := s.service.Update(ctx, "dela.juan.30", id, Request{CertificateType: "barangayClearance"})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		cert, gerr := s.service.Get(ctx, id)
		s.Require().NoError(gerr)
		s.Equal("barangaySoloParent", cert.CertificateType)
	})
}

func (s *CertificateServiceSuite) TestCompletionSideEffect() {
	ctx := context.Background()
	id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})

	s.Require().NoError(s.service.UpdateStatus(ctx, id, StatusCompleted))

	own, err := s.service.ListOwn(ctx, "dela.juan.30")
	s.Require().NoError(err)
	s.Empty(own, "completed certificate must leave the active index")

	cert, err := s.service.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(StatusCompleted, cert.Status, "record itself is retained for history")
}

func (s *CertificateServiceSuite) TestUpdateStatus() {
	ctx := context.Background()
	id := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})

	s.Run("unknown status is rejected without mutation", func() {
		err := s.service.UpdateStatus(ctx, id, "Shipped")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		cert, gerr := s.service.Get(ctx, id)
		s.Require().NoError(gerr)
		s.Equal(StatusPending, cert.Status)
	})

	s.Run("unknown certificate is not found", func() {
		err := s.service.UpdateStatus(ctx, "2025-99999", StatusProcessing)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("admin may move status backwards", func() {
		s.Require().NoError(s.service.UpdateStatus(ctx, id, StatusReadyForPickup))
		s.Require().NoError(s.service.UpdateStatus(ctx, id, StatusProcessing))

		cert, err := s.service.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal(StatusProcessing, cert.Status)
	})
}

func (s *CertificateServiceSuite) TestListPending() {
	ctx := context.Background()

	err := s.store.PutFields(ctx, "user", "dela.juan.30", map[string]string{"role": "user"})
	s.Require().NoError(err)

	death := s.request("dela.juan.30", Request{
		CertificateType: "barangayDeath",
		DeadName:        "Pedro Santos",
		DeadAge:         "81",
	})
	clearance := s.request("dela.juan.30", Request{CertificateType: "barangayClearance"})
	completed := s.request("dela.juan.30", Request{CertificateType: "barangayIndigency"})
	s.Require().NoError(s.service.UpdateStatus(ctx, completed, StatusCompleted))

	pending, err := s.service.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2, "completed requests stay out of the queue")

	byID := map[string]PendingCertificate{}
	for _, p := range pending {
		byID[p.CertificateID] = p
	}
	s.Equal("Deceased: Pedro Santos, Age: 81", byID[death].Details)
	s.Equal("N/A", byID[clearance].Details)
	s.Equal("user", byID[death].UserRole)
}
