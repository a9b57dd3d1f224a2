// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldserve/fieldserve-backend/internal/models"
	"github.com/fieldserve/fieldserve-backend/internal/services"
	"github.com/fieldserve/fieldserve-backend/internal/utils"
)

// actorFromContext rebuilds the authenticated actor from the claims
// the auth middleware stored on the request context.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return services.Actor{}, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return services.Actor{}, false
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	return services.Actor{
		UserID:  id,
		IsStaff: userType == string(models.UserTypeStaff),
	}, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
