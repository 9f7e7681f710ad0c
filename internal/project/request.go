package project

import (
	"fmt"
	"strings"
)

// Industry is one of the closed set of industries offered by the form.
type Industry string

// Methodology is one of the closed set of delivery methodologies offered by the form.
type Methodology string

// Technology is one of the closed set of technology stacks offered by the form.
type Technology string

const (
	IndustryLogistics  Industry = "Logistics"
	IndustryFinance    Industry = "Finance"
	IndustryEducation  Industry = "Education"
	IndustryHealthcare Industry = "Healthcare"
	IndustryRetail     Industry = "Retail"
)

const (
	MethodologyAgile     Methodology = "Agile"
	MethodologyWaterfall Methodology = "Waterfall"
	MethodologyScrum     Methodology = "Scrum"
	MethodologyKanban    Methodology = "Kanban"
)

const (
	TechnologyWebCloud    Technology = "Web App + Cloud Backend"
	TechnologyMobileCloud Technology = "Mobile App + Cloud Backend"
	TechnologySalesforce  Technology = "Salesforce Experience Cloud"
	TechnologySAP         Technology = "SAP"
)

var (
	industries    = []Industry{IndustryLogistics, IndustryFinance, IndustryEducation, IndustryHealthcare, IndustryRetail}
	methodologies = []Methodology{MethodologyAgile, MethodologyWaterfall, MethodologyScrum, MethodologyKanban}
	technologies  = []Technology{TechnologyWebCloud, TechnologyMobileCloud, TechnologySalesforce, TechnologySAP}
)

// Industries returns the industry options in display order.
func Industries() []Industry { return append([]Industry(nil), industries...) }

// Methodologies returns the methodology options in display order.
func Methodologies() []Methodology { return append([]Methodology(nil), methodologies...) }

// Technologies returns the technology options in display order.
func Technologies() []Technology { return append([]Technology(nil), technologies...) }

// FavorsGivenWhenThen reports whether acceptance criteria for this methodology
// are usually written as Given/When/Then scenarios.
func (m Methodology) FavorsGivenWhenThen() bool {
	return !strings.EqualFold(strings.TrimSpace(string(m)), string(MethodologyWaterfall))
}

// ParseIndustry maps a case-insensitive label to its canonical Industry.
func ParseIndustry(s string) (Industry, error) {
	for _, v := range industries {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: industry %q", ErrUnknownOption, s)
}

// ParseMethodology maps a case-insensitive label to its canonical Methodology.
func ParseMethodology(s string) (Methodology, error) {
	for _, v := range methodologies {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: methodology %q", ErrUnknownOption, s)
}

// ParseTechnology maps a case-insensitive label to its canonical Technology.
func ParseTechnology(s string) (Technology, error) {
	for _, v := range technologies {
		if strings.EqualFold(strings.TrimSpace(s), string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: technology %q", ErrUnknownOption, s)
}

// Request holds the five form values for one pipeline run. Name and
// Description are free text and may be empty.
type Request struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Industry    Industry    `json:"industry" yaml:"industry"`
	Methodology Methodology `json:"methodology" yaml:"methodology"`
	Technology  Technology  `json:"technology" yaml:"technology"`
}

// NewRequest builds a Request from raw form values. Only the three option
// fields are validated.
func NewRequest(name, description, industry, methodology, technology string) (Request, error) {
	ind, err := ParseIndustry(industry)
	if err != nil {
		return Request{}, err
	}
	meth, err := ParseMethodology(methodology)
	if err != nil {
		return Request{}, err
	}
	tech, err := ParseTechnology(technology)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Name:        name,
		Description: description,
		Industry:    ind,
		Methodology: meth,
		Technology:  tech,
	}, nil
}

// Canonical returns r with every option field in its canonical spelling.
func (r Request) Canonical() (Request, error) {
	return NewRequest(r.Name, r.Description, string(r.Industry), string(r.Methodology), string(r.Technology))
}

// Validate checks that the option fields hold members of their closed sets.
func (r Request) Validate() error {
	if _, err := ParseIndustry(string(r.Industry)); err != nil {
		return err
	}
	if _, err := ParseMethodology(string(r.Methodology)); err != nil {
		return err
	}
	if _, err := ParseTechnology(string(r.Technology)); err != nil {
		return err
	}
	return nil
}

// Options is the full set of choices, in display order, for rendering a form.
type Options struct {
	Industries    []Industry    `json:"industries" yaml:"industries"`
	Methodologies []Methodology `json:"methodologies" yaml:"methodologies"`
	Technologies  []Technology  `json:"technologies" yaml:"technologies"`
}

// AllOptions returns every option set.
func AllOptions() Options {
	return Options{
		Industries:    Industries(),
		Methodologies: Methodologies(),
		Technologies:  Technologies(),
	}
}
