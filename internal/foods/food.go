package foods

import (
	"errors"
	"time"
)

var ErrFoodNotFound = errors.New("food not found")

// Food holds macros per one serving. ServingType is a free-text label like
// "100 g" or "1 scoop (30g)", the gram amount inside it drives serving math.
type Food struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Carbs       float64   `json:"carbs"`
	Fat         float64   `json:"fat"`
	ServingType *string   `json:"servingType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
