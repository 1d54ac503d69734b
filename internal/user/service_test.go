package user

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestService_GetByID_RejectsMalformedIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	// No expectations: the repository must not be reached.
	service := NewService(NewMockRepository(ctrl))

	for _, id := range []string{"", "123", "507f1f77bcf86cd799439011", "{" + testUserID + "}"} {
		_, err := service.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}
