package goal

// Preset is a named goal range offered as a starting point.
type Preset struct {
	Name string
	Range
}

var Presets = []Preset{
	{"Sedentary Adult Male", Range{2000, 2500}},
	{"Sedentary Adult Female", Range{1600, 2000}},
	{"Active Adult Male", Range{2400, 3000}},
	{"Active Adult Female", Range{2000, 2400}},
	{"Teen Male (14-18)", Range{2400, 2800}},
	{"Teen Female (14-18)", Range{1800, 2400}},
	{"Child (9-13)", Range{1600, 2200}},
	{"Very Active Male", Range{2800, 3500}},
	{"Very Active Female", Range{2200, 2800}},
	{"Weight Loss Male", Range{1500, 1800}},
	{"Weight Loss Female", Range{1200, 1500}},
	{"Weight Gain Male", Range{2500, 3200}},
	{"Weight Gain Female", Range{2000, 2600}},
}
