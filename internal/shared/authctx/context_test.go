package authctx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireAuthenticated(t *testing.T) {
	_, err := RequireAuthenticated(Anonymous())
	require.ErrorIs(t, err, ErrUnauthenticated)

	claims := Claims{SubjectID: "u1", Role: RoleResident}
	got, err := RequireAuthenticated(Authenticated(claims))
	require.NoError(t, err)
	require.Equal(t, claims, got)
}

func TestRequireRoleExactMembership(t *testing.T) {
	resident := Authenticated(Claims{SubjectID: "u1", Role: RoleResident})
	staff := Authenticated(Claims{SubjectID: "u2", Role: RoleMunicipalStaff})
	admin := Authenticated(Claims{SubjectID: "u3", Role: RoleAdmin})

	_, err := RequireRole(resident, RoleAdmin)
	require.ErrorIs(t, err, ErrForbidden)

	// No hierarchy traversal: staff is not implicitly admin.
	_, err = RequireRole(staff, RoleAdmin)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := RequireRole(admin, RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, got.Role)

	got, err = RequireRole(staff, RoleAdmin, RoleMunicipalStaff)
	require.NoError(t, err)
	require.Equal(t, RoleMunicipalStaff, got.Role)

	_, err = RequireRole(Anonymous(), RoleAdmin)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRequireSelfOrRole(t *testing.T) {
	resident := Authenticated(Claims{SubjectID: "u1", Role: RoleResident})

	got, err := RequireSelfOrRole(resident, "u1", RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, "u1", got.SubjectID)

	_, err = RequireSelfOrRole(resident, "u2", RoleAdmin)
	require.ErrorIs(t, err, ErrForbidden)

	admin := Authenticated(Claims{SubjectID: "u3", Role: RoleAdmin})
	_, err = RequireSelfOrRole(admin, "u2", RoleAdmin)
	require.NoError(t, err)

	_, err = RequireSelfOrRole(Anonymous(), "u1", RoleAdmin)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("  Municipal_Staff ")
	require.True(t, ok)
	require.Equal(t, RoleMunicipalStaff, role)

	// The old per-service "staff" spelling is not part of the taxonomy.
	_, ok = ParseRole("staff")
	require.False(t, ok)

	_, ok = ParseRole("")
	require.False(t, ok)

	for _, role := range Roles() {
		require.True(t, role.Valid())
	}
}
