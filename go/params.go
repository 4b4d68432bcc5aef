package storefrontserver

import (
	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// pathParam binds a required simple-style path parameter and responds 400 when it is missing.
func pathParam(c *gin.Context, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || value == "" {
		responder.ValidationFailed(c, map[string]string{name: "is required"})
		return "", false
	}
	return value, true
}

// userIDQuery reads the optional userId query parameter. An absent id is passed through
// so the service can answer with an authentication problem.
func userIDQuery(c *gin.Context) (string, bool) {
	var userID string
	if err := runtime.BindQueryParameter("form", true, false, "userId", c.Request.URL.Query(), &userID); err != nil {
		responder.ValidationFailed(c, map[string]string{"userId": err.Error()})
		return "", false
	}
	return userID, true
}
