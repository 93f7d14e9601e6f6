package service

import (
	"os"
	"testing"

	"github.com/bazaarpanel/bazaar/database"
	"github.com/bazaarpanel/bazaar/database/model"
	"github.com/bazaarpanel/bazaar/logger"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func setup() {
	logger.InitLogger(logging.DEBUG)
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestCheckUser(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	// Unknown email and wrong password must be indistinguishable.
	identity, err := service.CheckUser("nobody@example.com", "whatever", "")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	identity, err = service.CheckUser("admin@localhost", "wrong-password", "")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	identity, err = service.CheckUser("admin@localhost", "admin", "")
	assert.NoError(t, err)
	if assert.NotNil(t, identity) {
		assert.Equal(t, "admin@localhost", identity.Email)
		assert.Equal(t, model.RoleAdmin, identity.Role)
	}
}

func TestCreateAndUpdateUser(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}

	user, err := service.CreateUser("vendor@example.com", "Vendor", "secret123", model.RoleVendor)
	assert.NoError(t, err)
	assert.NotZero(t, user.Id)
	// The stored password must be a hash, never the plaintext.
	assert.NotEqual(t, "secret123", user.Password)

	identity, err := service.CheckUser("vendor@example.com", "secret123", "")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleVendor, identity.Role)

	err = service.UpdateUser(user.Id, "vendor2@example.com", "newsecret")
	assert.NoError(t, err)

	_, err = service.CheckUser("vendor@example.com", "newsecret", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	identity, err = service.CheckUser("vendor2@example.com", "newsecret", "")
	assert.NoError(t, err)
	assert.Equal(t, user.Id, identity.Id)
}

func TestIdentityOmitsSecret(t *testing.T) {
	setup()
	defer teardown()

	service := UserService{}
	user, err := service.GetFirstUser()
	assert.NoError(t, err)

	identity := user.Identity()
	assert.Equal(t, user.Id, identity.Id)
	assert.Equal(t, user.Email, identity.Email)
	assert.Equal(t, user.Role, identity.Role)
}
