package swagger

import (
	"context"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/frahmantamala/teamchat/api"
)

var (
	loadOnce sync.Once
	doc      *openapi3.T
	loadErr  error
)

// Document parses and validates the embedded OpenAPI document.
func Document() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, loadErr = loader.LoadFromData(api.OpenAPI)
		if loadErr == nil {
			loadErr = doc.Validate(context.Background())
		}
	})
	return doc, loadErr
}

// SpecHandler serves the raw document.
func SpecHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPI)
}

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}
