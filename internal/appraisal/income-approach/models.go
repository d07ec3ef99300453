// internal/appraisal/income-approach/models.go
package incomeapproach

type Input struct {
	MarketRent        *float64  `json:"marketRent,omitempty"`
	CompRents         []float64 `json:"compRents,omitempty"`
	NumUnits          int       `json:"numUnits"`
	VacancyRate       *float64  `json:"vacancyRate,omitempty"`
	ExpenseRatio      *float64  `json:"expenseRatio,omitempty"`
	ItemizedExpenses  *float64  `json:"itemizedExpenses,omitempty"`
	ReserveRate       *float64  `json:"reserveRate,omitempty"`
	StabilizedRent    *float64  `json:"stabilizedRent,omitempty"`
	StabilizedVacancy *float64  `json:"stabilizedVacancy,omitempty"`
}

type Output struct {
	MarketRent    float64 `json:"marketRent"`
	RentSource    string  `json:"rentSource"`
	GPI           float64 `json:"gpi"`
	VacancyLoss   float64 `json:"vacancyLoss"`
	EGI           float64 `json:"egi"`
	OPEX          float64 `json:"opex"`
	Reserves      float64 `json:"reserves"`
	NOI           float64 `json:"noi"`
	StabilizedNOI float64 `json:"stabilizedNoi"`
}
