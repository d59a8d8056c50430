package memberform

// Nomination is one nominee listed on the member registration form.
type Nomination struct {
	Name         string `json:"name"`
	NIC          string `json:"nic"`
	Relationship string `json:"relationship"`
	Share        string `json:"share"`
}

// Request carries everything printed on the member registration form.
// Dates are YYYY-MM-DD or DD-MM-YYYY; dashes are printed as slashes.
type Request struct {
	EmployerNo string `json:"employerNo"`
	EPFNo      int    `json:"epfNo"`

	FullName        string `json:"fullName"`
	OtherNames      string `json:"otherNames"`
	Address         string `json:"address"`
	Nationality     string `json:"nationality"`
	PlaceOfBirth    string `json:"placeOfBirth"`
	MarriedOrSingle string `json:"marriedOrSingle"`
	SpouseName      string `json:"spouseName"`
	NIC             string `json:"nic"`

	FatherName             string `json:"fatherName"`
	FatherBirthPlace       string `json:"fatherBirthPlace"`
	MotherName             string `json:"motherName"`
	FatherFatherName       string `json:"fatherFatherName"`
	FatherFatherBirthPlace string `json:"fatherFatherBirthPlace"`
	MotherFatherName       string `json:"motherFatherName"`
	MotherFatherBirthPlace string `json:"motherFatherBirthPlace"`

	LastEmployerName     string `json:"lastEmployerName"`
	LastEmployerAddress  string `json:"lastEmployerAddress"`
	LastEmployment       string `json:"lastEmployment"`
	LastEmploymentPeriod string `json:"lastEmploymentPeriod"`

	Nominations []Nomination `json:"nominations"`

	Employer        string `json:"employer"`
	EmployerAddress string `json:"employerAddress"`
	Employment      string `json:"employment"`
	EmployedDate    string `json:"employedDate"`
	GrossSalary     string `json:"grossSalary"`
	Date            string `json:"date"`

	WitnessName     string `json:"witnessName"`
	WitnessPosition string `json:"witnessPosition"`
	WitnessAddress  string `json:"witnessAddress"`
}
