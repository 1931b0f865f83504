package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Check builds the ledger report of one client and logs any drift.
func (s *Service) Check(ctx context.Context, userID, clientID uuid.UUID) (*Report, error) {
	report, err := s.repo.Report(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}

	if report.Drift() {
		logDrift(report)
	}

	return report, nil
}

// Reconcile checks every client of a business and returns the ones whose
// stored totals drifted from their invoices.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID) ([]*Report, error) {
	reports, err := s.repo.Reports(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("building ledger reports: %w", err)
	}

	drifted := make([]*Report, 0)

	for _, r := range reports {
		if !r.Drift() {
			continue
		}

		logDrift(r)
		drifted = append(drifted, r)
	}

	return drifted, nil
}

func logDrift(r *Report) {
	slog.Warn("client ledger drift detected",
		"client_id", r.ClientID,
		"stored_invoiced", r.Stored.Invoiced.String(),
		"actual_invoiced", r.Actual.Invoiced.String(),
		"stored_paid", r.Stored.Paid.String(),
		"actual_paid", r.Actual.Paid.String(),
		"stored_outstanding", r.Stored.Outstanding.String(),
		"actual_outstanding", r.Actual.Outstanding.String(),
	)
}
