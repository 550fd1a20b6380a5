package model

type Patient struct {
	ID               int64  `json:"id"`
	UserID           int64  `json:"userId"`
	Name             string `json:"name"`
	Gender           int    `json:"gender"`
	Birthday         string `json:"birthday"`
	IDCard           string `json:"idCard"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergencyContact"`
	EmergencyPhone   string `json:"emergencyPhone"`
}

type PatientFilters struct {
	Name string
	Pagination
}
