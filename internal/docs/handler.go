package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init --dir ../../ --generalInfo cmd/aklujeats/main.go --output . --outputTypes go --parseInternal

// SpecPath is where the generated schema is served
const SpecPath = "/swagger/v1/swagger.json"

// UIPath is the Swagger UI entry page
const UIPath = "/swagger/index.html"

// Configure sets the API metadata published in the schema
func Configure(title, version, description string) {
	SwaggerInfo.Title = title
	SwaggerInfo.Version = version
	SwaggerInfo.Description = description
}

// Register mounts the schema and Swagger UI on routes. /swagger and
// /swagger/ redirect straight to the UI page.
func Register(routes gin.IRoutes) {
	routes.GET("/swagger", redirectToUI)
	routes.GET("/swagger/*any", Handler())
}

func redirectToUI(c *gin.Context) {
	c.Redirect(http.StatusMovedPermanently, UIPath)
}

// Handler serves the schema at SpecPath and Swagger UI under /swagger/.
// Register it as GET /swagger/*any.
func Handler() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL(SpecPath),
		ginSwagger.InstanceName(SwaggerInfo.InstanceName()),
	)

	return func(c *gin.Context) {
		switch c.Param("any") {
		case "/v1/swagger.json":
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(SwaggerInfo.ReadDoc()))
		case "", "/":
			redirectToUI(c)
		default:
			ui(c)
		}
	}
}
