package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accountsvc "storefront/internal/service/account"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func registerHandler(accounts accountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		user, err := accounts.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, accountsvc.ErrEmailTaken) {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "REGISTER_USER_ALREADY_EXISTS"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// loginHandler takes form-encoded credentials with the email in the
// username field and answers with a bearer token.
func loginHandler(accounts accountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		_, token, err := accounts.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, accountsvc.ErrInvalidCredentials) {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "LOGIN_BAD_CREDENTIALS"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return
		}
		c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

func profileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	}
}
