package testutil

import (
	"github.com/natours/natours-api/types"
)

func tour(name, difficulty string, price, rating float64, startDates ...interface{}) types.Record {
	return types.Record{
		"name":            name,
		"difficulty":      difficulty,
		"price":           price,
		"ratingsAverage":  rating,
		"ratingsQuantity": 10.0,
		"duration":        5.0,
		"maxGroupSize":    15.0,
		"summary":         "Breathtaking hike through the Canadian Banff National Park",
		"imageCover":      "tour-1-cover.jpg",
		"startDates":      startDates,
	}
}

// Tours returns eight easy tours, three of them priced at 1000 or less, three tours of other
// difficulties and one secret tour.
func Tours() []types.Record {
	secret := tour("The Secret Island", "medium", 297, 4.9, "2021-07-01T09:00:00.000Z")
	secret["secretTour"] = true

	return []types.Record{
		tour("The Forest Hiker", "easy", 397, 4.7,
			"2021-04-25T09:00:00.000Z", "2021-07-20T09:00:00.000Z", "2021-10-05T09:00:00.000Z"),
		tour("The Sea Explorer", "easy", 497, 4.9,
			"2021-06-19T09:00:00.000Z", "2021-07-20T09:00:00.000Z", "2021-08-18T09:00:00.000Z"),
		tour("The Sports Lover", "easy", 997, 4.4),
		tour("The City Wanderer", "easy", 1197, 4.6),
		tour("The Park Camper", "easy", 1497, 4.8, "2021-07-19,10:00"),
		tour("The Wine Taster", "easy", 1997, 4.5),
		tour("The Star Gazer", "easy", 2997, 4.3),
		tour("The Northern Lights", "easy", 1297, 4.2),
		tour("The Snow Adventurer", "medium", 997, 4.5,
			"2022-01-05T10:00:00.000Z", "2022-02-12T10:00:00.000Z"),
		tour("The Desert Nomad", "medium", 1597, 4.1),
		tour("The Mountain Biker", "difficult", 1797, 4.6),
		secret,
	}
}
