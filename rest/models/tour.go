package models

// Tour is the payload of a tour as accepted by the create and update operations
type Tour struct {
	Name            string                   `json:"name" validate:"required,min=10,max=40"`
	Duration        float64                  `json:"duration" validate:"required,gt=0"`
	MaxGroupSize    float64                  `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string                   `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64                  `json:"ratingsAverage" validate:"omitempty,min=1,max=5"`
	RatingsQuantity float64                  `json:"ratingsQuantity" validate:"min=0"`
	Price           float64                  `json:"price" validate:"required,gt=0"`
	PriceDiscount   float64                  `json:"priceDiscount" validate:"omitempty,ltfield=Price"`
	Summary         string                   `json:"summary" validate:"required"`
	Description     string                   `json:"description"`
	ImageCover      string                   `json:"imageCover" validate:"required"`
	Images          []string                 `json:"images"`
	StartDates      []string                 `json:"startDates"`
	SecretTour      bool                     `json:"secretTour"`
	StartLocation   map[string]interface{}   `json:"startLocation"`
	Locations       []map[string]interface{} `json:"locations"`
	Guides          []string                 `json:"guides"`
}
