package testcases

// All contains all test cases, grouped by category.
// The category name is used as a prefix in reference image filenames.
var All = map[string][]TestCase{
	"polygon":   polygonCases,
	"rectangle": rectangleCases,
	"circle":    circleCases,
	"line":      lineCases,
	"point":     pointCases,
	"precision": precisionCases,
	"large":     largeCases,
}
