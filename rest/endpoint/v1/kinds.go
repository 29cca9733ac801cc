package endpoint

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/natours/natours-api/auth"
	"github.com/natours/natours-api/db"
	"github.com/natours/natours-api/rest/contextutils"
	m "github.com/natours/natours-api/rest/models"
	"github.com/natours/natours-api/types"
)

const (
	ToursCollection    = "tours"
	UsersCollection    = "users"
	ReviewsCollection  = "reviews"
	BookingsCollection = "bookings"
)

const (
	defaultRatingsAverage = 4.5
	slugField             = "slug"
)

const passwordUpdateMessage = "This route is not for password updates. Please use /updateMyPassword."

var (
	userSummary  = types.Projection{Include: []string{"name", "photo"}}
	guideSummary = types.Projection{Include: []string{"name", "email", "photo", "role"}}
)

// reviewAuthor populates the author of a review wherever reviews are returned
var reviewAuthor = Include{
	Field:        "user",
	Collection:   UsersCollection,
	LocalField:   "user",
	ForeignField: types.IDField,
	List:         true,
	Projection:   userSummary,
}

func (s *routeList) tourKind() Kind {
	return Kind{
		Name:       "Tour",
		Collection: ToursCollection,
		Model:      func() interface{} { return &m.Tour{} },
		Scope:      []types.ConditionItem{{Column: "secretTour", Operator: types.OpNe, Value: true}},
		Defaults: types.Record{
			"ratingsAverage":  defaultRatingsAverage,
			"ratingsQuantity": 0,
		},
		Includes: []Include{
			{
				Field:        "guides",
				Collection:   UsersCollection,
				LocalField:   "guides",
				ForeignField: types.IDField,
				Many:         true,
				List:         true,
				Projection:   guideSummary,
			},
			{
				Field:        "reviews",
				Collection:   ReviewsCollection,
				LocalField:   types.IDField,
				ForeignField: "tour",
				Many:         true,
				Projection:   types.Projection{Exclude: []string{types.VersionField}},
				Includes:     []Include{reviewAuthor},
			},
		},
		Prepare: func(r *http.Request, record types.Record) error {
			if name, ok := record["name"].(string); ok {
				record[slugField] = s.config.Naming().ToSlug(name)
			}
			return nil
		},
	}
}

func (s *routeList) userKind() Kind {
	return Kind{
		Name:       "User",
		Collection: UsersCollection,
		Model:      func() interface{} { return &m.User{} },
		Hidden: []string{
			auth.PasswordField,
			auth.PasswordConfirmField,
			auth.ActiveField,
			"passwordResetToken",
			"passwordResetExpires",
		},
		Scope:            []types.ConditionItem{{Column: auth.ActiveField, Operator: types.OpNe, Value: false}},
		Protected:        []string{auth.PasswordField, auth.PasswordConfirmField},
		ProtectedMessage: passwordUpdateMessage,
	}
}

func (s *routeList) reviewKind() Kind {
	return Kind{
		Name:       "Review",
		Collection: ReviewsCollection,
		Model:      func() interface{} { return &m.Review{} },
		Parent:     &ParentScope{Param: "id", Field: "tour"},
		Includes:   []Include{reviewAuthor},
		Prepare: func(r *http.Request, record types.Record) error {
			if record["user"] == nil {
				if id := contextutils.GetContextUserID(r.Context()); id != "" {
					record["user"] = id
				}
			}
			return nil
		},
		AfterWrite: func(ctx context.Context, record types.Record) error {
			tour, _ := record["tour"].(string)
			return s.calcAverageRatings(ctx, tour)
		},
	}
}

func (s *routeList) bookingKind() Kind {
	return Kind{
		Name:       "Booking",
		Collection: BookingsCollection,
		Model:      func() interface{} { return &m.Booking{} },
		Defaults:   types.Record{"paid": true},
		Includes: []Include{
			{
				Field:        "tour",
				Collection:   ToursCollection,
				LocalField:   "tour",
				ForeignField: types.IDField,
				List:         true,
				Projection:   types.Projection{Include: []string{"name"}},
			},
			{
				Field:        "user",
				Collection:   UsersCollection,
				LocalField:   "user",
				ForeignField: types.IDField,
				List:         true,
				Projection:   types.Projection{Include: []string{"name", "email", "photo"}},
			},
		},
	}
}

// calcAverageRatings stores the number and the average of the ratings of a tour's reviews on the tour
func (s *routeList) calcAverageRatings(ctx context.Context, tourID string) error {
	if tourID == "" {
		return nil
	}

	reviews, err := s.db.Collection(ReviewsCollection).
		Find(types.Eq("tour", tourID)).
		Select(types.Projection{Include: []string{"rating"}}).
		All(ctx)
	if err != nil {
		return storeError(err, "")
	}

	quantity := 0
	average := defaultRatingsAverage
	if len(reviews) > 0 {
		sum := 0.0
		for _, review := range reviews {
			if rating, ok := types.ToFloat(review["rating"]); ok {
				sum += rating
				quantity++
			}
		}
		if quantity > 0 {
			average = math.Round(sum/float64(quantity)*10) / 10
		}
	}

	_, err = s.db.Collection(ToursCollection).FindByIDAndUpdate(ctx, tourID, types.Record{
		"ratingsQuantity": quantity,
		"ratingsAverage":  average,
	})
	if err != nil && !errors.Is(err, db.ErrNotFound) && !errors.Is(err, db.ErrInvalidID) {
		return storeError(err, tourID)
	}
	return nil
}
