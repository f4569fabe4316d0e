package models

const smbEmployeeThreshold = 500

type Company struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	EmployeeCount *int   `json:"employeeCount,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
}

// SizeSegment buckets the company by headcount: under 500 is SMB, otherwise
// Enterprise. Unknown headcount is unrecognized.
func (c Company) SizeSegment() SizeClass {
	if c.EmployeeCount == nil {
		return SizeUnrecognized
	}
	if *c.EmployeeCount < smbEmployeeThreshold {
		return SizeSMB
	}
	return SizeEnterprise
}
