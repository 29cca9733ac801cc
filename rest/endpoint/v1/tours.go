package endpoint

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/natours/natours-api/db"
	e "github.com/natours/natours-api/rest/errors"
	m "github.com/natours/natours-api/rest/models"
	t "github.com/natours/natours-api/rest/translator"
	"github.com/natours/natours-api/types"
)

const (
	topToursLimit  = "5"
	topToursFields = "name,price,ratingsAverage,summary,difficulty"
	statsMinRating = 4.5
)

// startDateLayouts are the formats tour start dates are accepted in
var startDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02,15:04",
	"2006-01-02",
}

// AliasQuery rewrites the request query before next handles it, e.g. for the top 5 cheapest tours
func AliasQuery(sortOrder string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		query.Set(t.LimitKey, topToursLimit)
		query.Set(t.SortKey, sortOrder)
		query.Set(t.FieldsKey, topToursFields)
		r.URL.RawQuery = query.Encode()
		next.ServeHTTP(w, r)
	})
}

type difficultyStats struct {
	count      int
	numRatings float64
	sumRating  float64
	sumPrice   float64
	minPrice   float64
	maxPrice   float64
}

// GetTourStats groups the well rated tours by difficulty
func (s *routeList) GetTourStats(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		kind := s.tourKind()
		spec := types.QuerySpec{
			Filter: []types.ConditionItem{{Column: "ratingsAverage", Operator: types.OpGte, Value: statsMinRating}},
			Projection: types.Projection{
				Include: []string{"difficulty", "ratingsAverage", "ratingsQuantity", "price"},
			},
		}
		tours, err := db.Execute(r.Context(), s.db.Collection(kind.Collection).Find(), kind.Scope, spec)
		if err != nil {
			return storeError(err, "")
		}

		groups := make(map[string]*difficultyStats)
		for _, tour := range tours {
			difficulty, _ := tour["difficulty"].(string)
			key := strings.ToUpper(difficulty)
			price, _ := types.ToFloat(tour["price"])
			rating, _ := types.ToFloat(tour["ratingsAverage"])
			quantity, _ := types.ToFloat(tour["ratingsQuantity"])

			group, ok := groups[key]
			if !ok {
				group = &difficultyStats{minPrice: price, maxPrice: price}
				groups[key] = group
			}
			group.count++
			group.numRatings += quantity
			group.sumRating += rating
			group.sumPrice += price
			if price < group.minPrice {
				group.minPrice = price
			}
			if price > group.maxPrice {
				group.maxPrice = price
			}
		}

		stats := make([]types.Record, 0, len(groups))
		for key, group := range groups {
			stats = append(stats, types.Record{
				types.IDField: key,
				"numTours":    group.count,
				"numRatings":  group.numRatings,
				"avgRating":   group.sumRating / float64(group.count),
				"avgPrice":    group.sumPrice / float64(group.count),
				"minPrice":    group.minPrice,
				"maxPrice":    group.maxPrice,
			})
		}
		sort.Slice(stats, func(i, j int) bool {
			a, b := stats[i]["avgPrice"].(float64), stats[j]["avgPrice"].(float64)
			if a == b {
				return stats[i][types.IDField].(string) < stats[j][types.IDField].(string)
			}
			return a < b
		})

		RespondJSONObjectWithCode(w, http.StatusOK, m.Envelope{
			Status: m.StatusSuccess,
			Data:   map[string]interface{}{"stats": stats},
		})
		return nil
	})(w, r)
}

// GetMonthlyPlan counts the tour starts of every month of a year, busiest month first
func (s *routeList) GetMonthlyPlan(w http.ResponseWriter, r *http.Request) {
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		year, err := strconv.Atoi(s.params(r, "year"))
		if err != nil || year <= 0 {
			return e.NewBadRequestError("Invalid year: " + s.params(r, "year"))
		}

		kind := s.tourKind()
		spec := types.QuerySpec{Projection: types.Projection{Include: []string{"name", "startDates"}}}
		tours, err := db.Execute(r.Context(), s.db.Collection(kind.Collection).Find(), kind.Scope, spec)
		if err != nil {
			return storeError(err, "")
		}

		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		months := make(map[int][]string)
		for _, tour := range tours {
			name, _ := tour["name"].(string)
			for _, value := range localValues(tour, "startDates") {
				date, ok := parseDate(value)
				if !ok || date.Before(start) || !date.Before(end) {
					continue
				}
				month := int(date.Month())
				months[month] = append(months[month], name)
			}
		}

		plan := make([]types.Record, 0, len(months))
		for month, names := range months {
			plan = append(plan, types.Record{
				"month":         month,
				"numTourStarts": len(names),
				"tours":         names,
			})
		}
		sort.Slice(plan, func(i, j int) bool {
			a, b := plan[i]["numTourStarts"].(int), plan[j]["numTourStarts"].(int)
			if a == b {
				return plan[i]["month"].(int) < plan[j]["month"].(int)
			}
			return a > b
		})
		if len(plan) > 12 {
			plan = plan[:12]
		}

		RespondJSONObjectWithCode(w, http.StatusOK, m.Envelope{
			Status: m.StatusSuccess,
			Data:   map[string]interface{}{"plan": plan},
		})
		return nil
	})(w, r)
}

func parseDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		for _, layout := range startDateLayouts {
			if date, err := time.Parse(layout, v); err == nil {
				return date.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
