package service

import (
	"strings"
	"testing"

	"github.com/bazaarpanel/bazaar/database/model"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	setup()
	defer teardown()

	service := TokenService{}
	identity := &model.Identity{
		Id:    7,
		Email: "partner@example.com",
		Name:  "Partner",
		Role:  model.RoleVendor,
	}

	token, err := service.Issue(identity)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsed, err := service.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, identity.Id, parsed.Id)
	assert.Equal(t, identity.Email, parsed.Email)
	assert.Equal(t, identity.Role, parsed.Role)
}

func TestTokenTamperRejected(t *testing.T) {
	setup()
	defer teardown()

	service := TokenService{}
	token, err := service.Issue(&model.Identity{Id: 1, Email: "a@b.c", Role: model.RoleUser})
	assert.NoError(t, err)

	// Flip the signature.
	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = service.Parse(tampered)
	assert.Error(t, err)

	_, err = service.Parse("not-a-token")
	assert.Error(t, err)
}
