package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// PrincipalFromContext returns the caller resolved by AuthRequired.
func PrincipalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok
}

// AuthRequired accepts verified access tokens and resolves their claims into a user.Principal.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		principal := user.Principal{
			UserID:       stringClaim(claims, "user_id"),
			CompanyID:    stringClaim(claims, "company_id"),
			EmployeeID:   stringClaim(claims, "employee_id"),
			DepartmentID: stringClaim(claims, "department_id"),
			Role:         user.Role(stringClaim(claims, "role")),
		}
		if err := principal.Validate(); err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(hfn)
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
