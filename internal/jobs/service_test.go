package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/database"
	"jobboard/internal/database/dbtest"
	"jobboard/internal/errcode"
	"jobboard/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newAcme(t *testing.T, svc *Service) *database.Company {
	t.Helper()
	c, err := svc.CreateCompany(context.Background(), store.CompanyInput{Name: "Acme", Email: "hr@acme.test", Phone: "555-0100"})
	require.NoError(t, err)
	return c
}

func TestListPostingsSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)
	acme := newAcme(t, svc)

	created, err := svc.CreatePosting(ctx, store.PostingInput{
		Title: "Engineer", Description: "Build", Salary: ptr[int64](50000), SkillTags: "go", CompanyID: &acme.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Company)

	hits, err := svc.ListPostings(ctx, "Engi")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, created.ID, hits[0].ID)
	assert.EqualValues(t, 50000, hits[0].Salary)

	hits, err = svc.ListPostings(ctx, "Zzz")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestListPostingsKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)

	var want []uint
	for _, title := range []string{"Zeta Engineer", "Alpha Engineer", "Mid Engineer"} {
		p, err := svc.CreatePosting(ctx, store.PostingInput{Title: title, Description: "d", Salary: ptr[int64](1), SkillTags: "x"})
		require.NoError(t, err)
		want = append(want, p.ID)
	}

	for i := 0; i < 3; i++ {
		all, err := svc.ListPostings(ctx, "")
		require.NoError(t, err)
		got := make([]uint, 0, len(all))
		for _, p := range all {
			got = append(got, p.ID)
		}
		assert.Equal(t, want, got)
	}
}

func TestGetCompanyIncludesPostingSummaries(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)
	acme := newAcme(t, svc)

	_, err := svc.CreatePosting(ctx, store.PostingInput{
		Title: "Engineer", Description: "Build", Salary: ptr[int64](50000), SkillTags: "go, sql", CompanyID: &acme.ID,
	})
	require.NoError(t, err)

	got, err := svc.GetCompany(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, got.Postings, 1)
	summary := got.Postings[0]
	assert.Equal(t, "Engineer", summary.Title)
	assert.EqualValues(t, 50000, summary.Salary)
	assert.Empty(t, summary.SkillTags, "summaries only carry id, title, description and salary")

	_, err = svc.GetCompany(ctx, acme.ID+1)
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestUpdateCompany(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)
	acme := newAcme(t, svc)

	updated, err := svc.UpdateCompany(ctx, acme.ID, store.CompanyPatch{Name: ptr("Acme Corp")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "hr@acme.test", updated.Email)

	same, err := svc.UpdateCompany(ctx, acme.ID, store.CompanyPatch{Name: ptr("Acme Corp")})
	require.NoError(t, err, "an update that changes nothing is still a success")
	assert.Equal(t, acme.ID, same.ID)

	_, err = svc.UpdateCompany(ctx, acme.ID+99, store.CompanyPatch{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, errcode.ErrNotFound)

	_, err = svc.UpdateCompany(ctx, acme.ID+99, store.CompanyPatch{})
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestDeleteCompany(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewService(db, nil)
	acme := newAcme(t, svc)

	tag := database.Tag{Label: "Go"}
	require.NoError(t, db.Create(&tag).Error)

	owned, err := svc.CreatePosting(ctx, store.PostingInput{
		Title: "Engineer", Description: "Build", Salary: ptr[int64](1), SkillTags: "go", CompanyID: &acme.ID, TagIDs: []uint{tag.ID},
	})
	require.NoError(t, err)
	orphan, err := svc.CreatePosting(ctx, store.PostingInput{Title: "Freelance", Description: "x", Salary: ptr[int64](1), SkillTags: "x"})
	require.NoError(t, err)

	removed, err := svc.DeleteCompany(ctx, acme.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = svc.GetPosting(ctx, owned.ID)
	assert.ErrorIs(t, err, errcode.ErrNotFound, "postings of a deleted company are removed")
	_, err = svc.GetPosting(ctx, orphan.ID)
	assert.NoError(t, err)

	var links int64
	require.NoError(t, db.Model(&database.PostingTag{}).Count(&links).Error)
	assert.Zero(t, links)

	_, err = svc.DeleteCompany(ctx, acme.ID)
	assert.ErrorIs(t, err, errcode.ErrNotFound, "deleting a missing company is not a silent success")
}

func TestPostingMaintenance(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.New(t), nil)

	p, err := svc.CreatePosting(ctx, store.PostingInput{Title: "Engineer", Description: "Build", Salary: ptr[int64](1), SkillTags: "go"})
	require.NoError(t, err)

	updated, err := svc.UpdatePosting(ctx, p.ID, store.PostingPatch{Salary: ptr[int64](90000)})
	require.NoError(t, err)
	assert.EqualValues(t, 90000, updated.Salary)

	_, err = svc.UpdatePosting(ctx, p.ID+10, store.PostingPatch{Salary: ptr[int64](1)})
	assert.ErrorIs(t, err, errcode.ErrNotFound)

	require.NoError(t, svc.DeletePosting(ctx, p.ID))
	assert.ErrorIs(t, svc.DeletePosting(ctx, p.ID), errcode.ErrNotFound)
}
