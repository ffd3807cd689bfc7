// Package jobs serves job postings and companies: listing, title search,
// company detail with posting summaries, and company/posting maintenance.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"jobboard/internal/database"
	"jobboard/internal/errcode"
	"jobboard/internal/store"
)

type Service struct {
	db        *gorm.DB
	companies *store.CompanyStore
	postings  *store.PostingStore
	logger    *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:        db,
		companies: store.NewCompanyStore(db),
		postings:  store.NewPostingStore(db),
		logger:    logger,
	}
}

// ListPostings returns every posting with its company and tags. A non-empty
// term keeps only postings whose title contains it, ignoring case.
func (s *Service) ListPostings(ctx context.Context, term string) ([]database.JobPosting, error) {
	return s.postings.FindAll(ctx, store.PostingQuery{
		TitleContains: term,
		WithCompany:   true,
		WithTags:      true,
	})
}

func (s *Service) GetPosting(ctx context.Context, id uint) (*database.JobPosting, error) {
	return s.postings.FindByID(ctx, id, store.PostingQuery{WithCompany: true, WithTags: true})
}

func (s *Service) CreatePosting(ctx context.Context, in store.PostingInput) (*database.JobPosting, error) {
	posting, err := s.postings.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "posting created", slog.Uint64("posting_id", uint64(posting.ID)))
	return s.GetPosting(ctx, posting.ID)
}

// UpdatePosting applies patch and returns the reloaded posting.
func (s *Service) UpdatePosting(ctx context.Context, id uint, patch store.PostingPatch) (*database.JobPosting, error) {
	n, err := s.postings.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("posting %d: %w", id, errcode.ErrNotFound)
	}
	return s.GetPosting(ctx, id)
}

func (s *Service) DeletePosting(ctx context.Context, id uint) error {
	n, err := s.postings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("posting %d: %w", id, errcode.ErrNotFound)
	}
	s.logger.InfoContext(ctx, "posting deleted", slog.Uint64("posting_id", uint64(id)))
	return nil
}

// ListCompanies returns companies with posting summaries.
func (s *Service) ListCompanies(ctx context.Context) ([]database.Company, error) {
	return s.companies.FindAll(ctx, store.CompanyQuery{WithPostingSummaries: true})
}

func (s *Service) GetCompany(ctx context.Context, id uint) (*database.Company, error) {
	return s.companies.FindByID(ctx, id, store.CompanyQuery{WithPostingSummaries: true})
}

func (s *Service) CreateCompany(ctx context.Context, in store.CompanyInput) (*database.Company, error) {
	company, err := s.companies.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "company created", slog.Uint64("company_id", uint64(company.ID)))
	return company, nil
}

// UpdateCompany reports errcode.ErrNotFound for a missing id, even when the
// patch is empty, and otherwise returns the reloaded company.
func (s *Service) UpdateCompany(ctx context.Context, id uint, patch store.CompanyPatch) (*database.Company, error) {
	var updated *database.Company
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		companies := s.companies.WithTx(tx)
		exists, err := companies.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("company %d: %w", id, errcode.ErrNotFound)
		}
		if _, err := companies.Update(ctx, id, patch); err != nil {
			return err
		}
		company, err := companies.FindByID(ctx, id, store.CompanyQuery{WithPostingSummaries: true})
		if err != nil {
			return err
		}
		updated = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCompany removes the company together with its postings in one
// transaction and returns the number of postings removed.
func (s *Service) DeleteCompany(ctx context.Context, id uint) (int64, error) {
	var removedPostings int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.postings.WithTx(tx).DeleteByCompany(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := s.companies.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return fmt.Errorf("company %d: %w", id, errcode.ErrNotFound)
		}
		removedPostings = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "company deleted",
		slog.Uint64("company_id", uint64(id)),
		slog.Int64("postings_removed", removedPostings),
	)
	return removedPostings, nil
}
