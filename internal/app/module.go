package app

import "github.com/gin-gonic/gin"

// Module is a self-registering slice of the API surface. Each business
// module mounts its own routes under the versioned API group and attaches
// its own route guards.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
