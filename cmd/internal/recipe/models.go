package recipe

type createRequest struct {
	Title        string       `json:"title" validate:"required,min=1"`
	Description  *string      `json:"description"`
	ImageURLs    []string     `json:"image_urls" validate:"omitempty,dive,url"`
	Servings     int          `json:"servings" validate:"gte=1"`
	TotalTime    int          `json:"total_time" validate:"gte=1"`
	Ingredients  []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Instructions []string     `json:"instructions" validate:"required,min=1,dive,required"`
	IsPublic     bool         `json:"is_public"`
}

type updateRequest struct {
	Title        *string       `json:"title" validate:"omitempty,min=1"`
	Description  *string       `json:"description"`
	ImageURLs    *[]string     `json:"image_urls" validate:"omitempty,dive,url"`
	Servings     *int          `json:"servings" validate:"omitempty,gte=1"`
	TotalTime    *int          `json:"total_time" validate:"omitempty,gte=1"`
	Ingredients  *[]Ingredient `json:"ingredients" validate:"omitempty,min=1,dive"`
	Instructions *[]string     `json:"instructions" validate:"omitempty,min=1,dive,required"`
	IsPublic     *bool         `json:"is_public"`
}
