package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	err := NewEmailInUse("a@x.com")

	domainErr := ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, CodeEmailInUse, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, CodeEmailInUse, ToDomainError(wrapped).Code)
}

func TestToDomainError_WrapsUnknownErrors(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	require.NotNil(t, domainErr)
	assert.Equal(t, CodeInternal, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)

	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewInvalidCredentials(), CodeInvalidCredentials))
	assert.False(t, HasCode(NewInvalidCredentials(), CodeNotFound))
	assert.False(t, HasCode(errors.New("boom"), CodeInternal))
}

func TestInvalidCredentialsMessageIsUniform(t *testing.T) {
	// Unknown email and wrong password must be indistinguishable.
	assert.Equal(t, NewInvalidCredentials().Error(), NewInvalidCredentials().Error())
}
