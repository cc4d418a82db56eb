package auth

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/repository"
)

// VerifyCredential returns middleware that rejects requests without a valid
// bearer credential. Verified claims land in the echo context under "user";
// no store access happens here.
func VerifyCredential(jwtService *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return jwtService.ValidateToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			// errors from ParseTokenFunc arrive wrapped in TokenParsingError;
			// anything else means no credential was extracted at all
			var tokenErr *echojwt.TokenParsingError
			if errors.As(err, &tokenErr) {
				if errors.Is(tokenErr, jwt.ErrTokenExpired) {
					return unauthorized("credential has expired", "EXPIRED_CREDENTIAL")
				}
				return unauthorized("credential could not be verified", "MALFORMED_CREDENTIAL")
			}
			return unauthorized("missing credential", "MISSING_CREDENTIAL")
		},
	})
}

// BindIdentity resolves the verified subject against the user store and binds
// the resulting Identity to the request. A credential whose subject no longer
// exists is rejected here, before any task operation runs.
func BindIdentity(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*Claims)
			if !ok {
				return unauthorized("credential could not be verified", "MALFORMED_CREDENTIAL")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return unauthorized("credential could not be verified", "MALFORMED_CREDENTIAL")
			}

			user, err := userRepo.FindByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return unauthorized("unknown identity", "UNKNOWN_IDENTITY")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: "internal server error",
					Code:  "INTERNAL_ERROR",
				})
			}

			bindIdentity(c, Identity{UserID: user.ID, Username: user.Username})
			return next(c)
		}
	}
}

func unauthorized(message, code string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
