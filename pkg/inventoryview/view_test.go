package inventoryview_test

import (
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"cabin/internal/apperrors"
	"cabin/internal/models"
	"cabin/pkg/client"
	"cabin/pkg/inventoryview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ inventoryview.ItemAPI = (*client.Client)(nil)

// MockItemAPI is a mock type for the ItemAPI interface
type MockItemAPI struct {
	mock.Mock
}

func (m *MockItemAPI) ListItems() ([]models.InventoryItem, error) {
	args := m.Called()
	items, _ := args.Get(0).([]models.InventoryItem)
	return items, args.Error(1)
}

func (m *MockItemAPI) CreateItem(input models.ItemInput) (*models.InventoryItem, error) {
	args := m.Called(input)
	item, _ := args.Get(0).(*models.InventoryItem)
	return item, args.Error(1)
}

func (m *MockItemAPI) UpdateItem(id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	args := m.Called(id, patch)
	item, _ := args.Get(0).(*models.InventoryItem)
	return item, args.Error(1)
}

func (m *MockItemAPI) DeleteItem(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func fixtures() []models.InventoryItem {
	now := time.Now().UTC()
	return []models.InventoryItem{
		{ID: "1", Name: "Canned Beans", Quantity: 5, Category: models.CategoryPantry, Status: models.StatusEnough,
			Notes: "Good protein source", LastUpdated: now, UserID: "demo-user"},
		{ID: "2", Name: "Toilet Paper", Quantity: 2, Category: models.CategoryHousehold, Status: models.StatusLow,
			Notes: "Need to buy more", LastUpdated: now, UserID: "demo-user"},
		{ID: "3", Name: "Bug Spray", Quantity: 1, Category: models.CategoryOutdoor, Status: models.StatusBring,
			LastUpdated: now, UserID: "demo-user"},
	}
}

func loadedView(t *testing.T) (*inventoryview.View, *MockItemAPI) {
	t.Helper()
	api := new(MockItemAPI)
	api.On("ListItems").Return(fixtures(), nil).Once()

	v := inventoryview.New(api)
	v.Login(models.DemoUser())
	require.NoError(t, v.Load())
	return v, api
}

func names(items []models.InventoryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestLoad(t *testing.T) {
	v, api := loadedView(t)
	assert.Equal(t, []string{"Canned Beans", "Toilet Paper", "Bug Spray"}, names(v.Items()))
	assert.Equal(t, v.Items(), v.Filtered())
	api.AssertExpectations(t)
}

func TestFilter(t *testing.T) {
	v, _ := loadedView(t)

	tests := []struct {
		name   string
		filter inventoryview.Filter
		want   []string
	}{
		{"zero value shows everything", inventoryview.Filter{}, []string{"Canned Beans", "Toilet Paper", "Bug Spray"}},
		{"All shows everything", inventoryview.Filter{Category: inventoryview.All, Status: inventoryview.All},
			[]string{"Canned Beans", "Toilet Paper", "Bug Spray"}},
		{"search matches name case-insensitively", inventoryview.Filter{Search: "BEANS"}, []string{"Canned Beans"}},
		{"search matches notes", inventoryview.Filter{Search: "buy more"}, []string{"Toilet Paper"}},
		{"category", inventoryview.Filter{Category: "Outdoor"}, []string{"Bug Spray"}},
		{"status", inventoryview.Filter{Status: "Low"}, []string{"Toilet Paper"}},
		{"combined filters", inventoryview.Filter{Search: "o", Category: "Household", Status: "Low"}, []string{"Toilet Paper"}},
		{"no match", inventoryview.Filter{Search: "lantern"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.SetFilter(tt.filter)
			assert.Equal(t, tt.filter, v.Filter())
			assert.Equal(t, tt.want, names(v.Filtered()))
			assert.Len(t, v.Items(), 3)
		})
	}
}

func TestAddAppendsAndRefilters(t *testing.T) {
	v, api := loadedView(t)
	v.SetFilter(inventoryview.Filter{Category: "Outdoor"})

	input := models.ItemInput{Name: "Lantern", Quantity: 1, Category: models.CategoryOutdoor, Status: models.StatusPacked}
	created := &models.InventoryItem{ID: "4", Name: "Lantern", Quantity: 1, Category: models.CategoryOutdoor,
		Status: models.StatusPacked, UserID: "demo-user"}
	api.On("CreateItem", input).Return(created, nil).Once()

	item, err := v.Add(input)
	require.NoError(t, err)
	assert.Equal(t, "4", item.ID)
	assert.Equal(t, "Lantern", v.Items()[3].Name)
	assert.Equal(t, []string{"Bug Spray", "Lantern"}, names(v.Filtered()))
	api.AssertExpectations(t)
}

func TestEditReplacesInPlace(t *testing.T) {
	v, api := loadedView(t)

	name := "Black Beans"
	patch := models.ItemPatch{Name: &name}
	updated := fixtures()[0]
	updated.Name = name
	api.On("UpdateItem", "1", patch).Return(&updated, nil).Once()

	item, err := v.Edit("1", patch)
	require.NoError(t, err)
	assert.Equal(t, name, item.Name)
	assert.Equal(t, []string{"Black Beans", "Toilet Paper", "Bug Spray"}, names(v.Items()))
	api.AssertExpectations(t)
}

func TestQuickUpdate(t *testing.T) {
	v, api := loadedView(t)
	v.SetFilter(inventoryview.Filter{Status: "Low"})

	status := models.StatusEnough
	qty := 12
	updated := fixtures()[1]
	updated.Status = status
	updated.Quantity = qty
	api.On("UpdateItem", "2", models.ItemPatch{Quantity: &qty, Status: &status}).Return(&updated, nil).Once()

	_, err := v.QuickUpdate("2", &qty, &status)
	require.NoError(t, err)
	assert.Empty(t, v.Filtered())
	assert.Equal(t, 12, v.Items()[1].Quantity)
	assert.Equal(t, 0, v.Counts()[models.StatusLow])
	assert.Equal(t, 2, v.Counts()[models.StatusEnough])
	api.AssertExpectations(t)
}

func TestRemove(t *testing.T) {
	v, api := loadedView(t)
	api.On("DeleteItem", "2").Return(nil).Once()

	require.NoError(t, v.Remove("2"))
	assert.Equal(t, []string{"Canned Beans", "Bug Spray"}, names(v.Items()))
	assert.Equal(t, []string{"Canned Beans", "Bug Spray"}, names(v.Filtered()))
	api.AssertExpectations(t)
}

func TestFailuresLeaveStateUnchanged(t *testing.T) {
	v, api := loadedView(t)
	before := v.Items()
	notFound := &client.APIError{StatusCode: 404, Status: "Not Found", Message: "Item not found"}
	boom := errors.New("connection refused")

	api.On("ListItems").Return(nil, boom).Once()
	api.On("CreateItem", mock.Anything).Return(nil, &client.APIError{StatusCode: 400, Status: "Bad Request"}).Once()
	api.On("UpdateItem", "missing", mock.Anything).Return(nil, notFound).Once()
	api.On("DeleteItem", "missing").Return(notFound).Once()

	assert.ErrorIs(t, v.Load(), boom)
	_, err := v.Add(models.ItemInput{})
	assert.Error(t, err)
	qty := 1
	_, err = v.QuickUpdate("missing", &qty, nil)
	assert.True(t, client.IsNotFound(err))
	assert.True(t, client.IsNotFound(v.Remove("missing")))

	assert.Equal(t, before, v.Items())
	assert.Len(t, v.Filtered(), 3)
	api.AssertExpectations(t)
}

func TestCounts(t *testing.T) {
	v, _ := loadedView(t)
	counts := v.Counts()
	assert.Equal(t, 1, counts[models.StatusEnough])
	assert.Equal(t, 1, counts[models.StatusLow])
	assert.Equal(t, 1, counts[models.StatusBring])
	assert.Equal(t, 0, counts[models.StatusBuy])
	assert.Len(t, counts, len(models.Statuses))
}

func TestSession(t *testing.T) {
	api := new(MockItemAPI)
	v := inventoryview.New(api)
	assert.False(t, v.Authenticated())
	assert.Nil(t, v.User())

	assert.ErrorIs(t, v.Load(), apperrors.ErrUnauthenticated)
	_, err := v.Add(models.ItemInput{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = v.Edit("1", models.ItemPatch{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, v.Remove("1"), apperrors.ErrUnauthenticated)
	api.AssertNotCalled(t, "ListItems")
	api.AssertNotCalled(t, "DeleteItem", mock.Anything)

	api.On("ListItems").Return(fixtures(), nil).Once()
	v.Login(models.DemoUser())
	assert.True(t, v.Authenticated())
	assert.Equal(t, "demo-user", v.User().UserID)
	require.NoError(t, v.Load())
	assert.Len(t, v.Items(), 3)

	v.Logout()
	assert.False(t, v.Authenticated())
	assert.Empty(t, v.Items())
	assert.Empty(t, v.Filtered())
	api.AssertExpectations(t)
}

func TestLogoutDuringRequestDiscardsResult(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		api := new(MockItemAPI)
		v := inventoryview.New(api)
		v.Login(models.DemoUser())
		api.On("ListItems").Run(func(mock.Arguments) { v.Logout() }).Return(fixtures(), nil).Once()

		assert.ErrorIs(t, v.Load(), apperrors.ErrUnauthenticated)
		assert.False(t, v.Authenticated())
		assert.Empty(t, v.Items())
		assert.Empty(t, v.Filtered())
		api.AssertExpectations(t)
	})

	t.Run("add", func(t *testing.T) {
		v, api := loadedView(t)
		created := &models.InventoryItem{ID: "4", Name: "Lantern", Category: models.CategoryOutdoor,
			Status: models.StatusPacked, UserID: "demo-user"}
		api.On("CreateItem", mock.Anything).Run(func(mock.Arguments) { v.Logout() }).Return(created, nil).Once()

		_, err := v.Add(models.ItemInput{Name: "Lantern"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		assert.Empty(t, v.Items())
		api.AssertExpectations(t)
	})

	t.Run("relogin as someone else", func(t *testing.T) {
		v, api := loadedView(t)
		other := &models.User{UserID: "bob", UserRoles: []string{"authenticated"}}
		api.On("DeleteItem", "1").Run(func(mock.Arguments) {
			v.Logout()
			v.Login(other)
		}).Return(nil).Once()

		assert.ErrorIs(t, v.Remove("1"), apperrors.ErrUnauthenticated)
		assert.Equal(t, "bob", v.User().UserID)
		assert.Empty(t, v.Items())
		api.AssertExpectations(t)
	})
}
