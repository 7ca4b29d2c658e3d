package model

type Airline struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Code string `json:"code" bson:"code" validate:"required,min=2,max=3"`
}
