package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/auth"
	"jobboard/internal/database"
	"jobboard/internal/database/dbtest"
	"jobboard/internal/errcode"
)

func ptr[T any](v T) *T { return &v }

func TestCompanyStoreCreateAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	companies := NewCompanyStore(dbtest.New(t))

	seen := map[uint]bool{}
	for i := 0; i < 5; i++ {
		c, err := companies.Create(ctx, CompanyInput{Name: "Acme", Email: "hr@acme.test", Phone: "555-0100"})
		require.NoError(t, err)
		require.NotZero(t, c.ID)
		assert.False(t, seen[c.ID], "id %d reused", c.ID)
		seen[c.ID] = true
	}
}

func TestCompanyStoreRejectsMissingFields(t *testing.T) {
	companies := NewCompanyStore(dbtest.New(t))

	_, err := companies.Create(context.Background(), CompanyInput{Name: "Acme", Email: "  "})
	var verr *errcode.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "company_email")
	assert.Contains(t, verr.Fields, "company_phone")
}

func TestCompanyStoreUpdateAndDeleteCounts(t *testing.T) {
	ctx := context.Background()
	companies := NewCompanyStore(dbtest.New(t))

	c, err := companies.Create(ctx, CompanyInput{Name: "Acme", Email: "hr@acme.test", Phone: "555-0100"})
	require.NoError(t, err)

	n, err := companies.Update(ctx, c.ID, CompanyPatch{Phone: ptr("555-0199")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = companies.Update(ctx, c.ID+100, CompanyPatch{Phone: ptr("555-0199")})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = companies.Update(ctx, c.ID, CompanyPatch{Name: ptr("")})
	var verr *errcode.ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := companies.FindByID(ctx, c.ID, CompanyQuery{})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)

	n, err = companies.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = companies.FindByID(ctx, c.ID, CompanyQuery{})
	assert.ErrorIs(t, err, errcode.ErrNotFound)
}

func TestUserStoreHashesPasswordOnCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(dbtest.New(t))

	u, err := users.Create(ctx, UserInput{Email: "A@B.com", Password: "secret", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("secret", u.PasswordHash))

	_, err = users.Update(ctx, u.ID, UserPatch{Password: ptr("another-secret")})
	require.NoError(t, err)

	reloaded, err := users.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "another-secret", reloaded.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("another-secret", reloaded.PasswordHash))
	assert.False(t, auth.CheckPasswordHash("secret", reloaded.PasswordHash))
}

func TestUserStoreUpdateNormalizesBeforeValidating(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(dbtest.New(t))

	u, err := users.Create(ctx, UserInput{Email: "a@b.com", Password: "secret", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	n, err := users.Update(ctx, u.ID, UserPatch{Email: ptr("  C@D.com "), FirstName: ptr(" Grace ")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reloaded, err := users.FindByID(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "c@d.com", reloaded.Email)
	assert.Equal(t, "Grace", reloaded.FirstName)

	_, err = users.Update(ctx, u.ID, UserPatch{LastName: ptr("   ")})
	var verr *errcode.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "lastName")
}

func TestUserStoreValidation(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(dbtest.New(t))

	_, err := users.Create(ctx, UserInput{Email: "not-an-email", Password: "12345", FirstName: "A", LastName: "B"})
	var verr *errcode.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	_, err = users.Create(ctx, UserInput{Email: "a@b.com", Password: "secret", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, err = users.Create(ctx, UserInput{Email: "a@b.com", Password: "secret", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, errcode.ErrConflict)
}

func TestPostingStoreSearchAndPreload(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	companies := NewCompanyStore(db)
	tags := NewTagStore(db)
	postings := NewPostingStore(db)

	acme, err := companies.Create(ctx, CompanyInput{Name: "Acme", Email: "hr@acme.test", Phone: "555-0100"})
	require.NoError(t, err)
	golang, err := tags.Create(ctx, TagInput{Label: "Go"})
	require.NoError(t, err)

	eng, err := postings.Create(ctx, PostingInput{
		Title: "Engineer", Description: "Build things", Salary: ptr[int64](50000),
		SkillTags: "go, sql", CompanyID: &acme.ID, TagIDs: []uint{golang.ID},
	})
	require.NoError(t, err)
	assert.False(t, eng.DatePosted.IsZero())

	_, err = postings.Create(ctx, PostingInput{
		Title: "100% Remote_Designer", Description: "Draw things", Salary: ptr[int64](40000), SkillTags: "figma",
	})
	require.NoError(t, err)

	found, err := postings.FindAll(ctx, PostingQuery{TitleContains: "engi", WithCompany: true, WithTags: true})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, eng.ID, found[0].ID)
	require.NotNil(t, found[0].Company)
	assert.Equal(t, "Acme", found[0].Company.Name)
	require.Len(t, found[0].Tags, 1)
	assert.Equal(t, "Go", found[0].Tags[0].Label)

	found, err = postings.FindAll(ctx, PostingQuery{TitleContains: "Zzz"})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = postings.FindAll(ctx, PostingQuery{TitleContains: "0%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "100% Remote_Designer", found[0].Title)

	found, err = postings.FindAll(ctx, PostingQuery{TitleContains: "%"})
	require.NoError(t, err)
	assert.Len(t, found, 1, "wildcard characters in the term match literally")
}

func TestPostingStoreRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	postings := NewPostingStore(dbtest.New(t))

	_, err := postings.Create(ctx, PostingInput{Title: "Engineer", Description: "x", Salary: ptr[int64](-1), SkillTags: "go"})
	var verr *errcode.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "salary")

	missing := uint(42)
	_, err = postings.Create(ctx, PostingInput{Title: "Engineer", Description: "x", Salary: ptr[int64](1), SkillTags: "go", CompanyID: &missing})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "company_id")

	_, err = postings.Create(ctx, PostingInput{Title: "Engineer", Description: "x", Salary: ptr[int64](1), SkillTags: "go", TagIDs: []uint{9}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "tag_ids")
}

func TestTagStoreSetDifference(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	tags := NewTagStore(db)

	var ids []uint
	for _, label := range []string{"Go", "SQL", "Docker"} {
		tag, err := tags.Create(ctx, TagInput{Label: label})
		require.NoError(t, err)
		ids = append(ids, tag.ID)
	}

	inserted, err := tags.InsertSkillTags(ctx, []database.SkillTag{{UserID: 1, TagID: ids[0]}})
	require.NoError(t, err)
	assert.Equal(t, []database.SkillTag{{UserID: 1, TagID: ids[0]}}, inserted)

	inserted, err = tags.InsertSkillTags(ctx, []database.SkillTag{{UserID: 1, TagID: ids[0]}, {UserID: 1, TagID: ids[1]}})
	require.NoError(t, err)
	assert.Equal(t, []database.SkillTag{{UserID: 1, TagID: ids[1]}}, inserted, "duplicate association is ignored")

	available, err := tags.TagsNotHeldBy(ctx, 1)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, ids[2], available[0].ID)

	held, err := tags.UserTags(ctx, 1)
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, "Go", held[0].Label)
	assert.Equal(t, "SQL", held[1].Label)

	_, err = tags.Create(ctx, TagInput{Label: "Go"})
	assert.ErrorIs(t, err, errcode.ErrConflict)
}
