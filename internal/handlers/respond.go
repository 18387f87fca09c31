package handlers

import (
	"errors"
	"net/http"

	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// statusFor : correspondance catégorie d'erreur → statut HTTP
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuthentication:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage : seul le message d'une erreur typée est renvoyé au client
func publicMessage(err error) string {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return "Internal server error"
}

func respondError(c *gin.Context, err error) {
	respondErrorStatus(c, statusFor(services.KindOf(err)), err)
}

func respondErrorStatus(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

func currentUser(c *gin.Context) string {
	return c.GetString("user_id")
}

// uuidParam lit un identifiant de chemin ; répond 400 s'il est mal formé
func uuidParam(c *gin.Context, name string) (gocql.UUID, bool) {
	id, err := gocql.ParseUUID(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return gocql.UUID{}, false
	}
	return id, true
}
