// Package certificate implements the certificate request lifecycle: user
// submissions with per-type detail validation, ownership-scoped mutation,
// and admin-driven status transitions.
//
// Ownership is tracked in a per-user index set alongside the records. Every
// user-scoped mutation checks membership and answers "not found" on a miss,
// so a caller probing someone else's certificate ID cannot learn it exists.
package certificate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bims/internal/account"
	"bims/internal/idgen"
	"bims/internal/store"
	dErrors "bims/pkg/domain-errors"
)

// ownerIndex is the set key tracking which certificate IDs a user owns.
func ownerIndex(username string) string {
	return store.Key(account.EntityType, username+":certificates")
}

type Service struct {
	store store.Store
	ids   *idgen.Allocator
}

func NewService(st store.Store, ids *idgen.Allocator) *Service {
	return &Service{store: st, ids: ids}
}

func validateRequest(req Request) error {
	if req.CertificateType == "" {
		return dErrors.New(dErrors.CodeValidation, "Certificate type is required")
	}
	if !validTypes[req.CertificateType] {
		return dErrors.New(dErrors.CodeValidation, "Invalid certificate type.")
	}
	switch req.CertificateType {
	case "barangayGuardianship":
		if req.ChildName == "" || req.Relationship == "" {
			return dErrors.New(dErrors.CodeValidation, "Child name and relationship are required")
		}
	case "barangaySoloParent":
		if req.ChildName == "" || req.FatherOrMother == "" {
			return dErrors.New(dErrors.CodeValidation, "Child name and parent are required")
		}
	case "barangayDeath":
		if req.DeadName == "" || req.DeadAge == "" {
			return dErrors.New(dErrors.CodeValidation, "Deceased name and age are required")
		}
	}
	return nil
}

// Request submits a certificate request for the user. Detail fields the type
// does not use are stored as empty strings so readers can rely on key
// presence.
func (s *Service) Request(ctx context.Context, username string, req Request) (string, error) {
	if username == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "Username is not available")
	}
	if err := validateRequest(req); err != nil {
		return "", err
	}

	id, err := s.ids.NextID(ctx, idgen.CounterCertificate, idgen.WidthCertificate)
	if err != nil {
		return "", err
	}

	err = s.store.PutFields(ctx, EntityType, id, map[string]string{
		"certificateId":   id,
		"username":        username,
		"certificateType": req.CertificateType,
		"childName":       req.ChildName,
		"relationship":    req.Relationship,
		"fatherOrMother":  req.FatherOrMother,
		"deadName":        req.DeadName,
		"deadAge":         req.DeadAge,
		"status":          StatusPending,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save certificate")
	}

	if err := s.store.SetAdd(ctx, ownerIndex(username), id); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to index certificate")
	}
	return id, nil
}

// ListOwn returns the user's active certificates, resolved through the
// ownership index. Completed certificates have left the index and do not
// appear here.
func (s *Service) ListOwn(ctx context.Context, username string) ([]Certificate, error) {
	ids, err := s.store.SetMembers(ctx, ownerIndex(username))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list certificates")
	}

	certificates := make([]Certificate, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			fields, err := s.store.GetAll(gctx, EntityType, id)
			if err != nil {
				return err
			}
			certificates[i] = fromFields(id, fields)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch certificates")
	}
	return certificates, nil
}

// Update replaces a pending certificate's type and details. Anything past
// Pending is in process and blocks user edits.
func (s *Service) Update(ctx context.Context, username, id string, req Request) error {
	existing, err := s.owned(ctx, username, id)
	if err != nil {
		return err
	}
	if existing["status"] != StatusPending {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot update a certificate that is already in process")
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	err = s.store.PutFields(ctx, EntityType, id, map[string]string{
		"certificateType": req.CertificateType,
		"childName":       req.ChildName,
		"relationship":    req.Relationship,
		"fatherOrMother":  req.FatherOrMother,
		"deadName":        req.DeadName,
		"deadAge":         req.DeadAge,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update certificate")
	}
	return nil
}

// Cancel withdraws a pending request: the record and its index membership
// are both removed.
func (s *Service) Cancel(ctx context.Context, username, id string) error {
	existing, err := s.owned(ctx, username, id)
	if err != nil {
		return err
	}
	if existing["status"] != StatusPending {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot cancel a certificate that is not pending")
	}
	return s.remove(ctx, username, id)
}

// Delete removes a certificate the user owns. Same gating as Cancel: once
// the request is in process only an admin transition can end it.
func (s *Service) Delete(ctx context.Context, username, id string) error {
	existing, err := s.owned(ctx, username, id)
	if err != nil {
		return err
	}
	if existing["status"] != StatusPending {
		return dErrors.New(dErrors.CodeBadRequest, "Cannot delete a certificate that is in process")
	}
	return s.remove(ctx, username, id)
}

// ListPending returns every certificate not yet Completed, enriched with a
// readable details line and the requester's role for the admin queue.
func (s *Service) ListPending(ctx context.Context) ([]PendingCertificate, error) {
	records, err := store.FetchAll(ctx, s.store, EntityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list certificates")
	}

	pending := make([]PendingCertificate, 0, len(records))
	for _, rec := range records {
		if rec.Fields["status"] == StatusCompleted {
			continue
		}
		cert := fromFields(rec.ID, rec.Fields)
		role, err := s.store.GetField(ctx, account.EntityType, cert.Username, "role")
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch requester")
		}
		pending = append(pending, PendingCertificate{
			Certificate: cert,
			Details:     detailsLine(cert),
			UserRole:    role,
		})
	}
	return pending, nil
}

// UpdateStatus sets a certificate's status to one of the four canonical
// values. Completed revokes the owner's index membership; the record stays
// retrievable by ID for history.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch certificate")
	}
	if len(existing) == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Certificate not found")
	}
	if !validStatuses[status] {
		return dErrors.New(dErrors.CodeBadRequest, "Invalid status")
	}

	if err := s.store.PutFields(ctx, EntityType, id, map[string]string{"status": status}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to update certificate status")
	}

	if status == StatusCompleted {
		if err := s.store.SetRemove(ctx, ownerIndex(existing["username"]), id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to retire certificate")
		}
	}
	return nil
}

// Get fetches a certificate by ID without an ownership check, for admin and
// history lookups.
func (s *Service) Get(ctx context.Context, id string) (Certificate, error) {
	fields, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch certificate")
	}
	if len(fields) == 0 {
		return Certificate{}, dErrors.New(dErrors.CodeNotFound, "Certificate not found")
	}
	return fromFields(id, fields), nil
}

// owned fetches the certificate iff it exists and belongs to the user. A
// record owned by someone else answers not found.
func (s *Service) owned(ctx context.Context, username, id string) (map[string]string, error) {
	existing, err := s.store.GetAll(ctx, EntityType, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch certificate")
	}
	member, err := s.store.SetIsMember(ctx, ownerIndex(username), id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to check ownership")
	}
	if len(existing) == 0 || !member {
		return nil, dErrors.New(dErrors.CodeNotFound, "Certificate not found or unauthorized access")
	}
	return existing, nil
}

func (s *Service) remove(ctx context.Context, username, id string) error {
	if err := s.store.SetRemove(ctx, ownerIndex(username), id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to unindex certificate")
	}
	if err := s.store.Delete(ctx, EntityType, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete certificate")
	}
	return nil
}

func fromFields(id string, fields map[string]string) Certificate {
	return Certificate{
		CertificateID:   id,
		Username:        fields["username"],
		CertificateType: fields["certificateType"],
		ChildName:       fields["childName"],
		Relationship:    fields["relationship"],
		FatherOrMother:  fields["fatherOrMother"],
		DeadName:        fields["deadName"],
		DeadAge:         fields["deadAge"],
		Status:          fields["status"],
	}
}

func detailsLine(cert Certificate) string {
	switch cert.CertificateType {
	case "barangayGuardianship":
		return fmt.Sprintf("Child: %s, Relationship: %s", cert.ChildName, cert.Relationship)
	case "barangaySoloParent":
		return fmt.Sprintf("Child: %s, Parent: %s", cert.ChildName, cert.FatherOrMother)
	case "barangayDeath":
		return fmt.Sprintf("Deceased: %s, Age: %s", cert.DeadName, cert.DeadAge)
	default:
		return "N/A"
	}
}
