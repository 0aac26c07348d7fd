package mechanism

type yamlMechanism struct {
	Description string         `yaml:"description"`
	Units       Units          `yaml:"units"`
	Phases      []yamlPhase    `yaml:"phases"`
	Species     []yamlSpecies  `yaml:"species"`
	Reactions   []yamlReaction `yaml:"reactions"`
}

type yamlPhase struct {
	Name     string   `yaml:"name"`
	Thermo   string   `yaml:"thermo"`
	Elements []string `yaml:"elements"`
	Species  []string `yaml:"species"`
}

type yamlSpecies struct {
	Name        string             `yaml:"name"`
	Composition map[string]float64 `yaml:"composition"`
}

type yamlReaction struct {
	Equation          string             `yaml:"equation"`
	Type              string             `yaml:"type"`
	RateConstant      *yamlArrhenius     `yaml:"rate-constant"`
	Efficiencies      map[string]float64 `yaml:"efficiencies"`
	DefaultEfficiency *float64           `yaml:"default-efficiency"`
	Duplicate         bool               `yaml:"duplicate"`
}

type yamlArrhenius struct {
	A  *float64 `yaml:"A"`
	B  float64  `yaml:"b"`
	Ea quantity `yaml:"Ea"`
}
