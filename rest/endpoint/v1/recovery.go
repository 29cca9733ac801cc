package endpoint

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/natours/natours-api/config"
	e "github.com/natours/natours-api/rest/errors"
)

type recoveryHandler struct {
	handler http.Handler
	config  config.Config
}

// NewRecoveryHandler turns a panic while serving a request into a 500 response and logs it
func NewRecoveryHandler(handler http.Handler, cfg config.Config) http.Handler {
	return &recoveryHandler{handler: handler, config: cfg}
}

func (h *recoveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if recovered == http.ErrAbortHandler {
			panic(recovered)
		}

		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		h.config.Logger().Error("panic while serving request",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"stack", string(debug.Stack()))
		RespondWithError(w, e.WrapInternalError("unexpected failure", err), config.IsDevelopment(h.config))
	}()

	h.handler.ServeHTTP(w, r)
}

// NotFoundHandler answers requests no route matched
func NotFoundHandler(cfg config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, e.NewNotFoundError(fmt.Sprintf("Can't find %s on this server!", r.URL.Path)),
			config.IsDevelopment(cfg))
	})
}
