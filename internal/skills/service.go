// Package skills manages the tags a user holds: which tags remain available,
// adding a requested set as a delta, and removing single associations.
package skills

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
	db     *gorm.DB
	tags   *store.TagStore
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, tags: store.NewTagStore(db), logger: logger}
}

// ListTags returns the full tag catalogue.
func (s *Service) ListTags(ctx context.Context) ([]database.Tag, error) {
	return s.tags.FindAll(ctx)
}

func (s *Service) CreateTag(ctx context.Context, label string) (*database.Tag, error) {
	return s.tags.Create(ctx, store.TagInput{Label: label})
}

func (s *Service) GetTag(ctx context.Context, id uint) (*database.Tag, error) {
	return s.tags.FindByID(ctx, id)
}

// UpdateTag renames a tag and returns it. A missing id is reported as
// errcode.ErrNotFound even when the label is unchanged.
func (s *Service) UpdateTag(ctx context.Context, id uint, label string) (*database.Tag, error) {
	var updated *database.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := s.tags.WithTx(tx)
		if _, err := tags.FindByID(ctx, id); err != nil {
			return err
		}
		if _, err := tags.Update(ctx, id, store.TagInput{Label: label}); err != nil {
			return err
		}
		tag, err := tags.FindByID(ctx, id)
		if err != nil {
			return err
		}
		updated = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTag removes a tag from the catalogue along with every user and
// posting association that references it.
func (s *Service) DeleteTag(ctx context.Context, id uint) error {
	n, err := s.tags.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tag %d: %w", id, errcode.ErrNotFound)
	}
	s.logger.InfoContext(ctx, "tag deleted", slog.Uint64("tag_id", uint64(id)))
	return nil
}

// UserTags returns the tags currently associated with userID.
func (s *Service) UserTags(ctx context.Context, userID uint) ([]database.Tag, error) {
	return s.tags.UserTags(ctx, userID)
}

// ListAvailableTags returns every tag userID does not hold yet.
func (s *Service) ListAvailableTags(ctx context.Context, userID uint) ([]database.Tag, error) {
	return s.tags.TagsNotHeldBy(ctx, userID)
}

// ReconcileTags adds the tags in requested that userID does not hold yet and
// returns exactly the associations this call created. Tags missing from
// requested are left in place. The read, diff and insert run in one
// transaction and the insert ignores conflicting rows, so concurrent calls
// cannot duplicate an association. A row another writer committed after the
// read is skipped and left out of the result.
func (s *Service) ReconcileTags(ctx context.Context, userID uint, requested []uint) ([]database.SkillTag, error) {
	if userID == 0 {
		return nil, errcode.ErrUnauthorized
	}
	if hasZero(requested) {
		return nil, errcode.NewValidationError("tagIds", "must contain positive ids")
	}
	wanted := dedupe(requested)

	var created []database.SkillTag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := s.tags.WithTx(tx)

		known, err := tags.FindByIDs(ctx, wanted)
		if err != nil {
			return err
		}
		if len(known) != len(wanted) {
			return errcode.NewValidationError("tagIds", "contains unknown tag")
		}

		current, err := tags.SkillTagIDs(ctx, userID)
		if err != nil {
			return err
		}
		delta := difference(wanted, current)
		if len(delta) == 0 {
			return nil
		}

		rows := make([]database.SkillTag, 0, len(delta))
		for _, tagID := range delta {
			rows = append(rows, database.SkillTag{UserID: userID, TagID: tagID})
		}
		inserted, err := tags.InsertSkillTags(ctx, rows)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []database.SkillTag{}
	}

	s.logger.InfoContext(ctx, "skill tags reconciled",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("requested", len(wanted)),
		slog.Int("created", len(created)),
	)
	return created, nil
}

// RemoveTag deletes the (userID, tagID) association. Removing an association
// that does not exist succeeds.
func (s *Service) RemoveTag(ctx context.Context, userID, tagID uint) error {
	if userID == 0 {
		return errcode.ErrUnauthorized
	}
	if tagID == 0 {
		return errcode.NewValidationError("id", "is required")
	}
	n, err := s.tags.DeleteSkillTag(ctx, userID, tagID)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "skill tag removed",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("tag_id", uint64(tagID)),
		slog.Int64("rows", n),
	)
	return nil
}

// dedupe keeps first-seen order.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func hasZero(ids []uint) bool {
	for _, id := range ids {
		if id == 0 {
			return true
		}
	}
	return false
}

// difference returns the members of wanted absent from current.
func difference(wanted, current []uint) []uint {
	held := make(map[uint]struct{}, len(current))
	for _, id := range current {
		held[id] = struct{}{}
	}
	out := make([]uint, 0, len(wanted))
	for _, id := range wanted {
		if _, ok := held[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
