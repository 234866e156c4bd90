package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tiendahub/tienda-backend/pkg/db/models"
	"github.com/tiendahub/tienda-backend/pkg/enums"
	pkgerrors "github.com/tiendahub/tienda-backend/pkg/errors"
)

type stubStoreRepo struct {
	stores map[uuid.UUID]*models.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: map[uuid.UUID]*models.Store{}}
}

func (r *stubStoreRepo) Create(_ context.Context, dto CreateStoreDTO) (*models.Store, error) {
	store := dto.ToModel()
	r.stores[store.ID] = store
	return store, nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := r.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *store
	return &cpy, nil
}

func (r *stubStoreRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	var out []models.Store
	for _, store := range r.stores {
		if store.OwnerID == ownerID {
			out = append(out, *store)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	cpy := *store
	r.stores[store.ID] = &cpy
	return nil
}

func TestCreateRequiresName(t *testing.T) {
	svc, err := NewService(newStubStoreRepo())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "   "})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateAndGet(t *testing.T) {
	repo := newStubStoreRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	ownerID := uuid.New()
	created, err := svc.Create(context.Background(), ownerID, CreateStoreInput{Name: "Abarrotes La Central"})
	require.NoError(t, err)
	require.Equal(t, enums.StoreStatusActive, created.Status)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Abarrotes La Central", got.Name)
	require.Equal(t, ownerID, got.OwnerID)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, err := NewService(newStubStoreRepo())
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	repo := newStubStoreRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	address := "Av. Juarez 12"
	created, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{
		Name:    "Abarrotes La Central",
		Address: &address,
	})
	require.NoError(t, err)

	phone := "555-0102"
	updated, err := svc.Update(context.Background(), created.ID, UpdateStoreInput{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "Abarrotes La Central", updated.Name)
	require.NotNil(t, updated.Address)
	require.Equal(t, "Av. Juarez 12", *updated.Address)
	require.NotNil(t, updated.Phone)
	require.Equal(t, "555-0102", *updated.Phone)
}

func TestDeactivateIsNotRepeatable(t *testing.T) {
	repo := newStubStoreRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), uuid.New(), CreateStoreInput{Name: "Abarrotes La Central"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	err = svc.Deactivate(context.Background(), created.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}
