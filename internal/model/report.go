package model

type DailyVisit struct {
	ID         string `json:"id"`
	Patient    string `json:"patient"`
	Department string `json:"department"`
	Doctor     string `json:"doctor"`
	Time       string `json:"time"`
	Status     string `json:"status"`
}

type DailyDrug struct {
	ID            string `json:"id"`
	Medicine      string `json:"medicine"`
	Specification string `json:"specification"`
	Quantity      int    `json:"quantity"`
	Unit          string `json:"unit"`
	Patient       string `json:"patient"`
	Department    string `json:"department"`
	Doctor        string `json:"doctor"`
	Date          string `json:"date"`
}

type MonthlyVisit struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type MonthlyDrug struct {
	Date  string `json:"date"`
	Items int    `json:"items"`
}

type CustomReportRow struct {
	ID         string `json:"id"`
	Patient    string `json:"patient"`
	Department string `json:"department"`
	Doctor     string `json:"doctor"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	DrugItems  int    `json:"drugItems"`
}

type CustomReportFilters struct {
	DeptName   string `json:"deptName,omitempty"`
	DoctorName string `json:"doctorName,omitempty"`
	DateStart  string `json:"dateStart,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateEnd    string `json:"dateEnd,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
