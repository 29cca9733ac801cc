package rest

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/natours/natours-api/types"
)

// ApiRouter mounts routes on httprouter trees. A tree can not hold a static segment and a parameter in
// the same position, so a route that conflicts with an earlier one goes to the next tree, which serves
// whatever the previous tree did not match. The last tree answers unmatched requests with notFound.
// Earlier routes therefore take precedence, e.g. /users/me over /users/:id.
func ApiRouter(routes []types.Route, notFound http.Handler, configure func(*httprouter.Router)) http.Handler {
	var layers [][]types.Route
	for _, route := range routes {
		placed := false
		for i, layer := range layers {
			if !conflictsWithAny(route, layer) {
				layers[i] = append(layers[i], route)
				placed = true
				break
			}
		}
		if !placed {
			layers = append(layers, []types.Route{route})
		}
	}

	var next http.Handler = notFound
	for i := len(layers) - 1; i >= 0; i-- {
		router := httprouter.New()
		router.HandleMethodNotAllowed = false
		router.NotFound = next
		if i < len(layers)-1 {
			// Leave unmatched paths untouched for the following trees
			router.RedirectFixedPath = false
			router.RedirectTrailingSlash = false
		}
		if configure != nil {
			configure(router)
		}
		for _, route := range layers[i] {
			router.Handler(route.Method, route.Pattern, route.Handler)
		}
		next = router
	}
	return next
}

func conflictsWithAny(route types.Route, layer []types.Route) bool {
	for _, other := range layer {
		if other.Method == route.Method && conflicts(other.Pattern, route.Pattern) {
			return true
		}
	}
	return false
}

// conflicts reports whether two patterns can not share a tree: after their common leading segments,
// one has a parameter where the other has a different segment.
func conflicts(a, b string) bool {
	segmentsA := strings.Split(strings.Trim(a, "/"), "/")
	segmentsB := strings.Split(strings.Trim(b, "/"), "/")
	for i := 0; i < len(segmentsA) && i < len(segmentsB); i++ {
		sa, sb := segmentsA[i], segmentsB[i]
		if sa == sb {
			continue
		}
		return isWildcard(sa) || isWildcard(sb)
	}
	return a == b
}

func isWildcard(segment string) bool {
	return strings.HasPrefix(segment, ":") || strings.HasPrefix(segment, "*")
}
