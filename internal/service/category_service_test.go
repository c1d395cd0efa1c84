package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeCategoryRepo struct {
	categories  map[string]*models.Category
	assignments map[string]map[string]bool
	seq         int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*models.Category{}, assignments: map[string]map[string]bool{}}
}

func (f *fakeCategoryRepo) List(_ context.Context, coachID string) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.CoachID != coachID {
			continue
		}
		copied := *c
		copied.ClientCount = len(f.assignments[c.ID])
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, coachID, id string) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.CoachID != coachID {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCategoryRepo) ListByClient(_ context.Context, coachID, clientID string) ([]models.Category, error) {
	var out []models.Category
	for id, members := range f.assignments {
		if members[clientID] && f.categories[id].CoachID == coachID {
			out = append(out, *f.categories[id])
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *models.Category) error {
	f.seq++
	category.ID = fmt.Sprintf("cat-%d", f.seq)
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *models.Category) error {
	copied := *category
	f.categories[category.ID] = &copied
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, coachID, id string) error {
	c, ok := f.categories[id]
	if !ok || c.CoachID != coachID {
		return sql.ErrNoRows
	}
	for childID, child := range f.categories {
		if child.ParentCategoryID != nil && *child.ParentCategoryID == id {
			delete(f.categories, childID)
			delete(f.assignments, childID)
		}
	}
	delete(f.categories, id)
	delete(f.assignments, id)
	return nil
}

func (f *fakeCategoryRepo) ToggleClient(_ context.Context, clientID, categoryID string) (bool, error) {
	members := f.assignments[categoryID]
	if members == nil {
		members = map[string]bool{}
		f.assignments[categoryID] = members
	}
	if members[clientID] {
		delete(members, clientID)
		return false, nil
	}
	members[clientID] = true
	return true, nil
}

type fakeClientLookup map[string]string

func (f fakeClientLookup) FindByID(_ context.Context, coachID, id string) (*models.Client, error) {
	if f[id] != coachID {
		return nil, sql.ErrNoRows
	}
	return &models.Client{ID: id, CoachID: coachID}, nil
}

func strPtr(v string) *string { return &v }

func TestCreateCategoryEnforcesTwoLevels(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: " Adults "})
	require.NoError(t, err)
	assert.Equal(t, "Adults", parent.Name)
	assert.Equal(t, defaultCategoryColor, parent.Color)

	child, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Mornings", ParentCategoryID: &parent.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentCategoryID)

	_, err = svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Too deep", ParentCategoryID: &child.ID})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateCategory(ctx, "coach-2", CategoryRequest{Name: "Foreign parent", ParentCategoryID: &parent.ID})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Bad color", Color: "blue"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeletedCategoryAbsentFromList(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	parent, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Kids"})
	require.NoError(t, err)
	child, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Juniors", ParentCategoryID: &parent.ID})
	require.NoError(t, err)
	other, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Seniors"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, "coach-1", parent.ID))

	all, err := svc.GetAllCategories(ctx, "coach-1")
	require.NoError(t, err)
	for _, c := range all {
		assert.NotEqual(t, parent.ID, c.ID)
		assert.NotEqual(t, child.ID, c.ID)
	}
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)

	err = svc.DeleteCategory(ctx, "coach-1", parent.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestGetCategoryTree(t *testing.T) {
	tree := buildCategoryTree([]models.Category{
		{ID: "a", Name: "Adults"},
		{ID: "b", Name: "Kids"},
		{ID: "a1", Name: "Evenings", ParentCategoryID: strPtr("a")},
		{ID: "x1", Name: "Orphan", ParentCategoryID: strPtr("gone")},
	})
	require.Len(t, tree, 3)
	assert.Equal(t, "a", tree[0].ID)
	require.Len(t, tree[0].Subcategories, 1)
	assert.Equal(t, "a1", tree[0].Subcategories[0].ID)
	assert.Empty(t, tree[1].Subcategories)
	assert.Equal(t, "x1", tree[2].ID)
}

func TestToggleClientCategory(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, fakeClientLookup{"client-1": "coach-1"}, nil, nil, nil)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "Boxing"})
	require.NoError(t, err)

	assigned, err := svc.ToggleClientCategory(ctx, "coach-1", "client-1", category.ID)
	require.NoError(t, err)
	assert.True(t, assigned)

	listed, err := svc.ListClientCategories(ctx, "coach-1", "client-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assigned, err = svc.ToggleClientCategory(ctx, "coach-1", "client-1", category.ID)
	require.NoError(t, err)
	assert.False(t, assigned)

	_, err = svc.ToggleClientCategory(ctx, "coach-1", "client-9", category.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestUpdateCategoryRejectsNestingParent(t *testing.T) {
	repo := newFakeCategoryRepo()
	svc := NewCategoryService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	a, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "B"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, "coach-1", CategoryRequest{Name: "A child", ParentCategoryID: &a.ID})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, "coach-1", a.ID, CategoryRequest{Name: "A", ParentCategoryID: &b.ID})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	updated, err := svc.UpdateCategory(ctx, "coach-1", b.ID, CategoryRequest{Name: "B2", Color: "#112233"})
	require.NoError(t, err)
	assert.Equal(t, "B2", updated.Name)
	assert.Equal(t, "#112233", updated.Color)

	_, err = svc.UpdateCategory(ctx, "coach-1", a.ID, CategoryRequest{Name: "A", ParentCategoryID: &a.ID})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
