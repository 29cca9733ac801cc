package models

type Review struct {
	Review string  `json:"review" validate:"required"`
	Rating float64 `json:"rating" validate:"required,min=1,max=5"`
	Tour   string  `json:"tour" validate:"required"`
	User   string  `json:"user" validate:"required"`
}
