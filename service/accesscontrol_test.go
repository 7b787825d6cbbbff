package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/enums"
	"github.com/Xushengqwer/blog_service/myErrors"
)

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(nil))
	assert.False(t, IsAdmin(&entities.User{Role: enums.RoleUser}))
	assert.True(t, IsAdmin(&entities.User{Role: enums.RoleAdmin}))
}

func TestAuthorizeOwnerOrAdmin(t *testing.T) {
	owner := &entities.User{BaseModel: entities.BaseModel{ID: 1}, Role: enums.RoleUser}
	other := &entities.User{BaseModel: entities.BaseModel{ID: 2}, Role: enums.RoleUser}
	admin := &entities.User{BaseModel: entities.BaseModel{ID: 3}, Role: enums.RoleAdmin}

	assert.ErrorIs(t, AuthorizeOwnerOrAdmin(nil, 1), myErrors.ErrUnauthenticated)
	assert.NoError(t, AuthorizeOwnerOrAdmin(owner, 1))
	assert.ErrorIs(t, AuthorizeOwnerOrAdmin(other, 1), myErrors.ErrForbidden)
	assert.NoError(t, AuthorizeOwnerOrAdmin(admin, 1))
}

func TestAuthorizeAdmin(t *testing.T) {
	assert.ErrorIs(t, AuthorizeAdmin(nil), myErrors.ErrUnauthenticated)
	assert.ErrorIs(t, AuthorizeAdmin(&entities.User{Role: enums.RoleUser}), myErrors.ErrForbidden)
	assert.NoError(t, AuthorizeAdmin(&entities.User{Role: enums.RoleAdmin}))
}
