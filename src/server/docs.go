package server

import (
	_ "embed"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Static OpenAPI description of the HTTP contract.
//
//go:embed static/swagger.json
var swaggerSpec []byte

const swaggerUIPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "/static/swagger.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>`

// -----------------------------------------------------------------------------

func (s *APIServer) getSwaggerSpec(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", swaggerSpec)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getDocs(c *gin.Context) {
	page := fmt.Sprintf(swaggerUIPage, html.EscapeString(s.Config.Name))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
