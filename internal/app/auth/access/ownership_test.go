package access

import (
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	cases := []struct {
		name  string
		id    model.Identity
		op    Operation
		allow bool
	}{
		{"owner user update", model.Identity{ID: owner, Role: model.RoleUser}, OpUpdate, true},
		{"owner user delete", model.Identity{ID: owner, Role: model.RoleUser}, OpDelete, true},
		{"owner admin update", model.Identity{ID: owner, Role: model.RoleAdmin}, OpUpdate, true},
		{"owner admin delete", model.Identity{ID: owner, Role: model.RoleAdmin}, OpDelete, true},
		{"stranger user update", model.Identity{ID: other, Role: model.RoleUser}, OpUpdate, false},
		{"stranger user delete", model.Identity{ID: other, Role: model.RoleUser}, OpDelete, false},
		{"stranger admin update", model.Identity{ID: other, Role: model.RoleAdmin}, OpUpdate, false},
		{"stranger admin delete", model.Identity{ID: other, Role: model.RoleAdmin}, OpDelete, true},
		{"anonymous vs orphan", model.Identity{}, OpUpdate, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ownerID := owner
			if tc.name == "anonymous vs orphan" {
				ownerID = uuid.Nil
			}
			require.Equal(t, tc.allow, Allow(tc.id, ownerID, tc.op))

			err := Authorize(tc.id, ownerID, tc.op)
			if tc.allow {
				require.NoError(t, err)
			} else {
				require.True(t, customErrors.IsForbidden(err))
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	require.Equal(t, "update", OpUpdate.String())
	require.Equal(t, "delete", OpDelete.String())
	require.Equal(t, "unknown", Operation(9).String())
}
