package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// IntVar parses a numeric path variable registered on the mux route.
func IntVar(r *http.Request, name string) (int, error) {
	value, ok := mux.Vars(r)[name]
	if !ok {
		return 0, Invalid("missing path parameter %s", name)
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, Invalid("invalid %s: %s", name, value)
	}
	return id, nil
}
