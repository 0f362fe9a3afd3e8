package client_test

import (
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"testing"

	"cabin/internal/handlers"
	"cabin/internal/models"
	"cabin/internal/repositories"
	"cabin/internal/services"
	"cabin/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// startServer serves a fresh in-memory API on a loopback port and returns
// its root URL.
func startServer(t *testing.T, auth services.AuthConfig) string {
	t.Helper()
	app := handlers.NewFiberApp(
		services.NewInventoryService(repositories.NewMemoryItemRepository(), nil),
		services.NewAuthService(auth),
		handlers.RouterOptions{},
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		if err := app.Listener(ln); err != nil {
			log.Printf("Test server stopped: %v", err)
		}
	}()
	t.Cleanup(func() { app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func newUser(id string) *models.User {
	return &models.User{
		UserID:           id,
		UserDetails:      id + "@example.com",
		UserRoles:        []string{"authenticated"},
		Claims:           []any{},
		IdentityProvider: "github",
	}
}

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := client.New("localhost:7071")
	assert.Error(t, err)

	_, err = client.New("://bad")
	assert.Error(t, err)
}

func TestClientLifecycle(t *testing.T) {
	server := startServer(t, services.AuthConfig{})
	c, err := client.New(server, client.WithPrincipal(newUser("alice")))
	require.NoError(t, err)

	items, err := c.ListItems()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	created, err := c.CreateItem(models.ItemInput{
		Name:     "Lamp Oil",
		Quantity: 1,
		Unit:     "liters",
		Category: models.CategoryHousehold,
		Status:   models.StatusLow,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.UserID)

	qty := 3
	status := models.StatusEnough
	updated, err := c.UpdateItem(created.ID, models.ItemPatch{Quantity: &qty, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, models.StatusEnough, updated.Status)
	assert.Equal(t, "Lamp Oil", updated.Name)
	assert.True(t, updated.LastUpdated.After(created.LastUpdated))

	items, err = c.ListItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	require.NoError(t, c.DeleteItem(created.ID))

	err = c.DeleteItem(created.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestClientAPIErrors(t *testing.T) {
	server := startServer(t, services.AuthConfig{})

	anonymous, err := client.New(server)
	require.NoError(t, err)
	_, err = anonymous.ListItems()
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Status)
	assert.Equal(t, "Authentication required", apiErr.Message)

	c, err := client.New(server, client.WithPrincipal(newUser("bob")))
	require.NoError(t, err)

	_, err = c.CreateItem(models.ItemInput{Quantity: 1, Category: models.CategoryPantry, Status: models.StatusEnough})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Bad Request", apiErr.Status)
	assert.Contains(t, apiErr.Message, "required")
	assert.Contains(t, apiErr.Error(), "Bad Request")

	name := "Ghost"
	_, err = c.UpdateItem("missing", models.ItemPatch{Name: &name})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Item not found", apiErr.Message)
}

func TestClientConnectionError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := client.New("http://" + addr)
	require.NoError(t, err)

	_, err = c.ListItems()
	require.Error(t, err)
	assert.False(t, client.IsNotFound(err))
}

func TestClientBearerToken(t *testing.T) {
	auth := services.AuthConfig{TokenSecret: "client-test-secret"}
	server := startServer(t, auth)

	token, err := services.NewAuthService(auth).IssueToken(newUser("carol"))
	require.NoError(t, err)

	c, err := client.New(server, client.WithBearerToken(token))
	require.NoError(t, err)

	me, err := c.Me()
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, "carol", me.UserID)

	created, err := c.CreateItem(models.ItemInput{
		Name: "Firewood", Quantity: 10, Category: models.CategoryOutdoor, Status: models.StatusEnough,
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", created.UserID)
}

func TestClientMeWithoutIdentity(t *testing.T) {
	server := startServer(t, services.AuthConfig{})
	c, err := client.New(server)
	require.NoError(t, err)

	me, err := c.Me()
	require.NoError(t, err)
	assert.Nil(t, me)
}
