package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/Alilen9/renthub-sub001/internal/models"
	"github.com/Alilen9/renthub-sub001/internal/store"
)

// IFaultService defines the interface for fault repository operations.
// Transitions go through the lifecycle engine; the service only persists
// the returned fault value.
type IFaultService interface {
	Report(ctx context.Context, in FaultInput) (*models.Fault, error)
	FindByID(ctx context.Context, id string) (*models.Fault, error)
	Update(ctx context.Context, id string, mutate func(models.Fault) (models.Fault, error)) (*models.Fault, error)
	Assign(ctx context.Context, id, serviceProvider, expectedCompletion string) (*models.Fault, error)
	UpdateProgress(ctx context.Context, id string, progress int) (*models.Fault, error)
	Resolve(ctx context.Context, id, response string) (*models.Fault, error)
	SetPriority(ctx context.Context, id string, priority models.FaultPriority) (*models.Fault, error)
	AppendMessage(ctx context.Context, id string, sender models.MessageSender, content string) (*models.Fault, error)
	List(ctx context.Context) ([]models.Fault, error)
	ListByTenant(ctx context.Context, tenantName string) ([]models.Fault, error)
	ListByStatus(ctx context.Context, status models.FaultStatus) ([]models.Fault, error)
}

// faultService implements IFaultService over the collection store.
type faultService struct {
	store store.Store
}

// NewFaultService creates a new FaultService.
func NewFaultService(st store.Store) IFaultService {
	return &faultService{store: st}
}

// Report creates a new pending fault and appends it to the faults collection.
func (s *faultService) Report(ctx context.Context, in FaultInput) (*models.Fault, error) {
	f, err := NewFault(in)
	if err != nil {
		return nil, err
	}
	f.ID = uuid.NewString()

	if err := s.store.Append(ctx, store.CollectionFaults, f); err != nil {
		return nil, fmt.Errorf("failed to persist fault %s: %w", f.ID, err)
	}
	return &f, nil
}

// FindByID scans the faults collection for the given id.
func (s *faultService) FindByID(ctx context.Context, id string) (*models.Fault, error) {
	raws, err := s.store.GetCollection(ctx, store.CollectionFaults)
	if err != nil {
		return nil, err
	}
	for _, raw := range raws {
		f, ok := decodeFault(raw)
		if ok && f.ID == id {
			return &f, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "fault", ID: id}
}

// Update loads the fault, applies the engine transition and writes the full
// collection back with the matching record replaced. The store only supports
// whole-collection writes, so this is a read-modify-write of the array.
func (s *faultService) Update(ctx context.Context, id string, mutate func(models.Fault) (models.Fault, error)) (*models.Fault, error) {
	raws, err := s.store.GetCollection(ctx, store.CollectionFaults)
	if err != nil {
		return nil, err
	}

	for i, raw := range raws {
		f, ok := decodeFault(raw)
		if !ok || f.ID != id {
			continue
		}
		updated, err := mutate(f)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(updated)
		if err != nil {
			return nil, fmt.Errorf("failed to encode fault %s: %w", id, err)
		}
		raws[i] = encoded
		if err := s.store.ReplaceAll(ctx, store.CollectionFaults, raws); err != nil {
			return nil, fmt.Errorf("failed to persist fault %s: %w", id, err)
		}
		return &updated, nil
	}
	return nil, &models.NotFoundError{Entity: "fault", ID: id}
}

// Assign transitions a pending fault to assigned.
func (s *faultService) Assign(ctx context.Context, id, serviceProvider, expectedCompletion string) (*models.Fault, error) {
	return s.Update(ctx, id, func(f models.Fault) (models.Fault, error) {
		return AssignFault(f, serviceProvider, expectedCompletion)
	})
}

// UpdateProgress records the provider's progress on an assigned fault.
func (s *faultService) UpdateProgress(ctx context.Context, id string, progress int) (*models.Fault, error) {
	return s.Update(ctx, id, func(f models.Fault) (models.Fault, error) {
		return UpdateFaultProgress(f, progress)
	})
}

// Resolve closes an assigned fault.
func (s *faultService) Resolve(ctx context.Context, id, response string) (*models.Fault, error) {
	return s.Update(ctx, id, func(f models.Fault) (models.Fault, error) {
		return ResolveFault(f, response)
	})
}

// SetPriority records the landlord's priority on a non-terminal fault.
func (s *faultService) SetPriority(ctx context.Context, id string, priority models.FaultPriority) (*models.Fault, error) {
	return s.Update(ctx, id, func(f models.Fault) (models.Fault, error) {
		return SetFaultPriority(f, priority)
	})
}

// AppendMessage appends to the fault's landlord/tenant thread.
func (s *faultService) AppendMessage(ctx context.Context, id string, sender models.MessageSender, content string) (*models.Fault, error) {
	return s.Update(ctx, id, func(f models.Fault) (models.Fault, error) {
		return AppendFaultMessage(f, sender, content)
	})
}

// List returns every fault in report order.
func (s *faultService) List(ctx context.Context) ([]models.Fault, error) {
	return s.list(ctx, func(models.Fault) bool { return true })
}

// ListByTenant returns all faults reported by the given tenant, in report order.
func (s *faultService) ListByTenant(ctx context.Context, tenantName string) ([]models.Fault, error) {
	return s.list(ctx, func(f models.Fault) bool { return f.TenantName == tenantName })
}

// ListByStatus returns all faults in the given status, in report order.
func (s *faultService) ListByStatus(ctx context.Context, status models.FaultStatus) ([]models.Fault, error) {
	return s.list(ctx, func(f models.Fault) bool { return f.Status == status })
}

func (s *faultService) list(ctx context.Context, keep func(models.Fault) bool) ([]models.Fault, error) {
	raws, err := s.store.GetCollection(ctx, store.CollectionFaults)
	if err != nil {
		return nil, err
	}
	faults := make([]models.Fault, 0, len(raws))
	for _, raw := range raws {
		if f, ok := decodeFault(raw); ok && keep(f) {
			faults = append(faults, f)
		}
	}
	return faults, nil
}

// decodeFault unmarshals one stored record. Readers must tolerate additive
// new optional fields; a record that fails to decode entirely is skipped
// rather than failing the whole read.
func decodeFault(raw json.RawMessage) (models.Fault, bool) {
	var f models.Fault
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Printf("skipping undecodable fault record: %v", err)
		return models.Fault{}, false
	}
	return f, true
}
