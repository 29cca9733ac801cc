package endpoint

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/natours/natours-api/config"
	"github.com/natours/natours-api/db"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

// Routes returns a slice of all the endpoint routes. Routes with a static segment are listed before
// routes with a parameter in the same position so they take precedence, e.g. /users/me over /users/:id.
func Routes(prefix string, operations config.Operations, cfg config.Config, dbClient *db.Db) []types.Route {
	rl := routeList{
		db:     dbClient,
		config: cfg,
		logger: cfg.Logger(),
		params: func(r *http.Request, name string) string {
			return httprouter.ParamsFromContext(r.Context()).ByName(name)
		},
	}
	return rl.routes(prefix, operations)
}

func (s *routeList) routes(prefix string, operations config.Operations) []types.Route {
	tours := s.tourKind()
	users := s.userKind()
	reviews := s.reviewKind()
	bookings := s.bookingKind()

	staff := func(h http.Handler) http.Handler {
		return s.Protect(s.RestrictTo(h, m.RoleAdmin, m.RoleLeadGuide))
	}
	admin := func(h http.Handler) http.Handler {
		return s.Protect(s.RestrictTo(h, m.RoleAdmin))
	}

	routes := []types.Route{
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/tours/top-5-cheap",
			Handler: AliasQuery("price,ratingsAverage", s.GetAll(tours)),
		},
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/tours/top-5-ratingsAverage",
			Handler: AliasQuery("-ratingsAverage,price", s.GetAll(tours)),
		},
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/tours/tour-stats",
			Handler: http.HandlerFunc(s.GetTourStats),
		},
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/tours/monthly-plan/:year",
			Handler: s.Protect(s.RestrictTo(http.HandlerFunc(s.GetMonthlyPlan), m.RoleAdmin, m.RoleLeadGuide, m.RoleGuide)),
		},
		{
			Method:  http.MethodPost,
			Pattern: prefix + "/users/signup",
			Handler: http.HandlerFunc(s.Signup),
		},
		{
			Method:  http.MethodPost,
			Pattern: prefix + "/users/login",
			Handler: http.HandlerFunc(s.Login),
		},
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/users/logout",
			Handler: http.HandlerFunc(s.Logout),
		},
		{
			Method:  http.MethodGet,
			Pattern: prefix + "/users/me",
			Handler: s.Protect(http.HandlerFunc(s.GetMe)),
		},
		{
			Method:  http.MethodPatch,
			Pattern: prefix + "/users/updateMe",
			Handler: s.Protect(http.HandlerFunc(s.UpdateMe)),
		},
		{
			Method:  http.MethodPatch,
			Pattern: prefix + "/users/updateMyPassword",
			Handler: s.Protect(http.HandlerFunc(s.UpdateMyPassword)),
		},
		{
			Method:  http.MethodDelete,
			Pattern: prefix + "/users/deleteMe",
			Handler: s.Protect(http.HandlerFunc(s.DeleteMe)),
		},
	}

	routes = append(routes, s.resourceRoutes(prefix+"/tours", tours, operations, resourceAccess{
		create: staff,
		update: staff,
		delete: staff,
	})...)
	routes = append(routes, s.resourceRoutes(prefix+"/tours/:id/reviews", reviews, operations.Only(config.List|config.Create), resourceAccess{
		list:   s.Protect,
		create: func(h http.Handler) http.Handler { return s.Protect(s.RestrictTo(h, m.RoleUser)) },
	})...)
	routes = append(routes, s.resourceRoutes(prefix+"/reviews", reviews, operations, resourceAccess{
		list:   s.Protect,
		read:   s.Protect,
		create: func(h http.Handler) http.Handler { return s.Protect(s.RestrictTo(h, m.RoleUser)) },
		update: func(h http.Handler) http.Handler { return s.Protect(s.RestrictTo(h, m.RoleUser, m.RoleAdmin)) },
		delete: func(h http.Handler) http.Handler { return s.Protect(s.RestrictTo(h, m.RoleUser, m.RoleAdmin)) },
	})...)
	// Users are created through /users/signup
	routes = append(routes, s.resourceRoutes(prefix+"/users", users, operations.Without(config.Create), resourceAccess{
		list:   admin,
		read:   admin,
		update: admin,
		delete: admin,
	})...)
	routes = append(routes, s.resourceRoutes(prefix+"/bookings", bookings, operations, resourceAccess{
		list:   staff,
		read:   staff,
		create: staff,
		update: staff,
		delete: staff,
	})...)

	return routes
}

// resourceAccess wraps each generic handler of a resource, a nil wrapper leaves the handler public
type resourceAccess struct {
	list   func(http.Handler) http.Handler
	read   func(http.Handler) http.Handler
	create func(http.Handler) http.Handler
	update func(http.Handler) http.Handler
	delete func(http.Handler) http.Handler
}

// resourceRoutes returns the generic routes of kind mounted at pattern, limited to the supported operations
func (s *routeList) resourceRoutes(
	pattern string, kind Kind, operations config.Operations, access resourceAccess,
) []types.Route {
	wrap := func(wrapper func(http.Handler) http.Handler, handler http.Handler) http.Handler {
		if wrapper == nil {
			return handler
		}
		return wrapper(handler)
	}

	routes := make([]types.Route, 0, 5)
	if operations.IsSupported(config.List) {
		routes = append(routes, types.Route{
			Method:  http.MethodGet,
			Pattern: pattern,
			Handler: wrap(access.list, s.GetAll(kind)),
		})
	}
	if operations.IsSupported(config.Create) {
		routes = append(routes, types.Route{
			Method:  http.MethodPost,
			Pattern: pattern,
			Handler: wrap(access.create, s.CreateOne(kind)),
		})
	}
	if operations.IsSupported(config.Read) {
		routes = append(routes, types.Route{
			Method:  http.MethodGet,
			Pattern: pattern + "/:id",
			Handler: wrap(access.read, s.GetOne(kind)),
		})
	}
	if operations.IsSupported(config.Update) {
		routes = append(routes, types.Route{
			Method:  http.MethodPatch,
			Pattern: pattern + "/:id",
			Handler: wrap(access.update, s.UpdateOne(kind)),
		})
	}
	if operations.IsSupported(config.Delete) {
		routes = append(routes, types.Route{
			Method:  http.MethodDelete,
			Pattern: pattern + "/:id",
			Handler: wrap(access.delete, s.DeleteOne(kind)),
		})
	}
	return routes
}
